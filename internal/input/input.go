// Package input decodes operator-authored parameter records from YAML or JSON.
package input

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"

	// wrapperKey is accepted around a record, matching the build request body.
	wrapperKey = "config"
	chainIDKey = "l1_chain_id"
)

// derivedKeys are recomputed from the chain id on every compilation.
var derivedKeys = []string{"l1_block_time", "l1_use_clique"}

// FormatOf picks the decoder from a file name. Anything that is not .json is
// treated as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a record. Hex literals such as 0x10 stay strings with their
// exact source text; an outer "config" object is unwrapped.
func Decode(data []byte, format Format) (map[string]any, error) {
	var (
		record map[string]any
		err    error
	)
	switch format {
	case FormatJSON:
		record, err = decodeJSON(data)
	case FormatYAML:
		record, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if len(record) == 1 {
		if inner, ok := record[wrapperKey].(map[string]any); ok {
			record = inner
		}
	}

	return record, nil
}

// SplitChainID removes the L1 keys from a record. It returns the chain id if the
// record carried one.
func SplitChainID(record map[string]any) (uint64, bool, error) {
	for _, k := range derivedKeys {
		delete(record, k)
	}

	raw, ok := record[chainIDKey]
	if !ok {
		return 0, false, nil
	}
	delete(record, chainIDKey)

	var s string
	switch v := raw.(type) {
	case int:
		s = strconv.Itoa(v)
	case json.Number:
		s = v.String()
	case string:
		s = v
	default:
		return 0, false, fmt.Errorf("%s must be a whole number, got %v", chainIDKey, raw)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a whole number: %w", chainIDKey, err)
	}
	return id, true, nil
}

func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode JSON input: %w", err)
	}
	if record == nil {
		return nil, errors.New("JSON input must be an object")
	}
	return record, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML input: %w", err)
	}
	if doc.Kind == 0 {
		return map[string]any{}, nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: YAML input must be a mapping", root.Line)
	}

	v, err := convert(root)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if _, dup := out[key.Value]; dup {
				return nil, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
			}
			v, err := convert(value)
			if err != nil {
				return nil, err
			}
			out[key.Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := convert(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!int" && isHexLiteral(n.Value) {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}
