// Package output renders command results as YAML, JSON or plain tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

type (
	// SingleQuotedString always renders with single quotes, so hex literals
	// re-read as strings instead of integers.
	SingleQuotedString string

	// Table is a header plus rows, rendered with tablewriter.
	Table struct {
		Header []string
		Rows   [][]string
	}
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be yaml, json or table)", s)
	}
}

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}

// YAML writes v with every 0x-prefixed string single-quoted.
func YAML(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return fmt.Errorf("could not encode output. Err: '%w'", err)
	}
	quoteHex(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("could not marshal output. Err: '%w'", err)
	}
	return enc.Close()
}

func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not marshal output. Err: '%w'", err)
	}
	return nil
}

// Render writes v in the requested structured format. Tables are rendered
// with RenderTable.
func Render(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		return YAML(w, v)
	case FormatJSON:
		return JSON(w, v)
	default:
		return fmt.Errorf("format %q cannot render structured output", format)
	}
}

func RenderTable(w io.Writer, t Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.Header)
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(t.Rows)
	table.Render()
}

func quoteHex(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str" && strings.HasPrefix(n.Value, "0x") {
		n.Style = yaml.SingleQuotedStyle
	}
	for _, child := range n.Content {
		quoteHex(child)
	}
}
