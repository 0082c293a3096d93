package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/compose-network/rollup-configurator/internal/catalog"
)

// Value is a validated parameter value. Its kind always matches the kind of the
// catalog parameter it was validated against, and hex strings keep their exact
// source text.
type Value struct {
	kind catalog.Kind
	i    int64
	b    bool
	s    string
}

func intValue(i int64) Value     { return Value{kind: catalog.KindInteger, i: i} }
func boolValue(b bool) Value     { return Value{kind: catalog.KindBoolean, b: b} }
func stringValue(s string) Value { return Value{kind: catalog.KindString, s: s} }
func hexValue(s string) Value    { return Value{kind: catalog.KindHexString, s: s} }

func (v Value) Kind() catalog.Kind { return v.kind }
func (v Value) Int() int64         { return v.i }
func (v Value) Bool() bool         { return v.b }

// Text returns the string or hex-string payload.
func (v Value) Text() string { return v.s }

// Interface returns the value as int64, bool or string.
func (v Value) Interface() any {
	switch v.kind {
	case catalog.KindInteger:
		return v.i
	case catalog.KindBoolean:
		return v.b
	case catalog.KindString, catalog.KindHexString:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case catalog.KindInteger:
		return strconv.FormatInt(v.i, 10)
	case catalog.KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case catalog.KindInteger:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case catalog.KindBoolean:
		return []byte(strconv.FormatBool(v.b)), nil
	case catalog.KindString, catalog.KindHexString:
		return json.Marshal(v.s)
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %q", v.kind)
	}
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}
