package catalog

import "fmt"

// Mode selects which parameters are visible to the operator.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeAdvanced Mode = "advanced"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBasic:
		return ModeBasic, nil
	case ModeAdvanced:
		return ModeAdvanced, nil
	default:
		return "", fmt.Errorf("unknown visibility mode %q (must be %q or %q)", s, ModeBasic, ModeAdvanced)
	}
}

// Project filters sections down to what the given mode shows. In basic mode
// advanced parameters are removed and sections left empty are dropped; the
// relative order of what remains is preserved. Advanced mode returns an
// equal copy of the input; any other mode is treated as basic. The input is
// never modified.
func Project(sections []Section, mode Mode) []Section {
	if mode == ModeAdvanced {
		return cloneSections(sections)
	}

	out := make([]Section, 0, len(sections))
	for _, section := range sections {
		visible := make([]Parameter, 0, len(section.Parameters))
		for _, p := range section.Parameters {
			if !p.Advanced {
				visible = append(visible, p)
			}
		}
		if len(visible) == 0 {
			continue
		}
		section.Parameters = visible
		out = append(out, section)
	}

	return out
}

// Visible is a shorthand for projecting the whole catalog.
func (c *Catalog) Visible(mode Mode) []Section {
	return Project(c.sections, mode)
}
