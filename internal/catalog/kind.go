package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the data kind of a parameter. The set is closed: every switch over
// Kind in this module handles all four values and fails loudly on anything else.
type Kind string

const (
	KindInteger   Kind = "integer"
	KindBoolean   Kind = "boolean"
	KindString    Kind = "string"
	KindHexString Kind = "hex-string"
)

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindInteger, KindBoolean, KindString, KindHexString}
}

func (k Kind) Valid() bool {
	switch k {
	case KindInteger, KindBoolean, KindString, KindHexString:
		return true
	default:
		return false
	}
}

func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}

	kind := Kind(raw)
	if !kind.Valid() {
		return fmt.Errorf("line %d: unknown parameter kind %q", node.Line, raw)
	}
	*k = kind

	return nil
}
