// Package catalog holds the declarative description of every configurable
// rollup parameter. The validation schema, the form defaults, the basic/advanced
// projection and the deploy-config key map are all derived from it.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

type (
	// Parameter is one row of the catalog.
	Parameter struct {
		ID                  string `yaml:"id" json:"id"`
		Title               string `yaml:"title" json:"title"`
		Description         string `yaml:"description" json:"description"`
		Kind                Kind   `yaml:"kind" json:"kind"`
		Unit                string `yaml:"unit" json:"unit,omitempty"`
		DefaultValue        string `yaml:"default-value" json:"defaultValue,omitempty"`
		RecommendedValue    string `yaml:"recommended-value" json:"recommendedValue,omitempty"`
		Notes               string `yaml:"notes" json:"notes,omitempty"`
		StandardRequirement string `yaml:"standard-requirement" json:"standardRequirement,omitempty"`
		Advanced            bool   `yaml:"advanced" json:"advanced"`
		Deprecated          bool   `yaml:"deprecated" json:"deprecated,omitempty"`
		DeployKey           string `yaml:"deploy-key" json:"deployKey,omitempty"`
		// SystemDefault is applied by the compiler when the operator supplies no
		// value. Nil means the field has no default and must be supplied.
		SystemDefault any `yaml:"system-default" json:"systemDefault,omitempty"`
	}

	// Section is a named, ordered group of parameters.
	Section struct {
		ID          string      `yaml:"id" json:"id"`
		Title       string      `yaml:"title" json:"title"`
		Description string      `yaml:"description" json:"description,omitempty"`
		Parameters  []Parameter `yaml:"parameters" json:"parameters"`
	}

	// Catalog is the immutable, validated parameter catalog.
	Catalog struct {
		sections    []Section
		byID        map[string]Parameter
		sectionOf   map[string]string
		byDeployKey map[string]string
		ids         []string
	}

	document struct {
		Sections []Section `yaml:"sections"`
	}
)

var (
	//go:embed catalog.yaml
	catalogYAML []byte

	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Embedded returns the catalog parsed from the embedded catalog.yaml.
func Embedded() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(catalogYAML)
		if defaultErr != nil {
			defaultErr = fmt.Errorf("failed to load embedded catalog.yaml: %w", defaultErr)
		}
	})

	return defaultCatalog, defaultErr
}

// Default returns the embedded catalog or panics if it is malformed. The embedded
// file is covered by tests, so in practice this never fails.
func Default() *Catalog {
	c, err := Embedded()
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses and validates a catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return build(doc.Sections)
}

func build(sections []Section) (*Catalog, error) {
	var errs []error

	if len(sections) == 0 {
		errs = append(errs, errors.New("catalog declares no sections"))
	}

	c := &Catalog{
		byID:        make(map[string]Parameter),
		sectionOf:   make(map[string]string),
		byDeployKey: make(map[string]string),
	}
	seenSections := make(map[string]struct{}, len(sections))

	for si := range sections {
		section := &sections[si]
		if section.ID == "" {
			errs = append(errs, fmt.Errorf("section #%d has no id", si))
		} else if _, dup := seenSections[section.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate section id %q", section.ID))
		}
		seenSections[section.ID] = struct{}{}

		if section.Title == "" {
			section.Title = section.ID
		}
		if len(section.Parameters) == 0 {
			errs = append(errs, fmt.Errorf("section %q has no parameters", section.ID))
		}

		for pi := range section.Parameters {
			p := &section.Parameters[pi]
			if p.ID == "" {
				errs = append(errs, fmt.Errorf("section %q: parameter #%d has no id", section.ID, pi))
				continue
			}
			if owner, dup := c.sectionOf[p.ID]; dup {
				errs = append(errs, fmt.Errorf("duplicate parameter id %q (sections %q and %q)", p.ID, owner, section.ID))
				continue
			}
			if !p.Kind.Valid() {
				errs = append(errs, fmt.Errorf("parameter %q: unknown kind %q", p.ID, p.Kind))
			}
			if p.Title == "" {
				p.Title = p.ID
			}
			if p.DeployKey != "" {
				if other, dup := c.byDeployKey[p.DeployKey]; dup {
					errs = append(errs, fmt.Errorf("parameters %q and %q share deploy key %q", other, p.ID, p.DeployKey))
				}
				c.byDeployKey[p.DeployKey] = p.ID
			}

			c.sectionOf[p.ID] = section.ID
			c.byID[p.ID] = *p
			c.ids = append(c.ids, p.ID)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}

	c.sections = sections

	return c, nil
}

// Sections returns the ordered sections. The result is a copy; callers may
// modify it freely.
func (c *Catalog) Sections() []Section {
	return cloneSections(c.sections)
}

// Parameters returns every parameter flattened in catalog order.
func (c *Catalog) Parameters() []Parameter {
	out := make([]Parameter, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns every parameter id in catalog order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

func (c *Catalog) Lookup(id string) (Parameter, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// SectionOf returns the id of the section owning the parameter.
func (c *Catalog) SectionOf(id string) (string, bool) {
	s, ok := c.sectionOf[id]
	return s, ok
}

// ByDeployKey maps an OP-stack deploy-config key back to its parameter id.
func (c *Catalog) ByDeployKey(key string) (string, bool) {
	id, ok := c.byDeployKey[key]
	return id, ok
}

// Len is the number of parameters in the catalog.
func (c *Catalog) Len() int {
	return len(c.ids)
}

func cloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		s.Parameters = slices.Clone(s.Parameters)
		out[i] = s
	}
	return out
}
