package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAML_QuotesHex(t *testing.T) {
	var buf bytes.Buffer
	err := YAML(&buf, map[string]any{
		"gas_limit":  "0x2faf080",
		"chain_id":   901,
		"token_name": "Optimism",
		"nested":     map[string]any{"root": "0xDEAD"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "gas_limit: '0x2faf080'")
	assert.Contains(t, out, "root: '0xDEAD'")
	assert.Contains(t, out, "chain_id: 901")
	assert.Contains(t, out, "token_name: Optimism")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "0x2faf080", back["gas_limit"])
}

func TestSingleQuotedString(t *testing.T) {
	data, err := yaml.Marshal(map[string]SingleQuotedString{"abi": `[{"type":"function"}]`})
	require.NoError(t, err)
	assert.Equal(t, "abi: '[{\"type\":\"function\"}]'\n", string(data))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]any{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, []int{1}))
	assert.Error(t, Render(&buf, FormatTable, []int{1}))
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, Table{
		Header: []string{"Field", "Kind"},
		Rows:   [][]string{{"l2_chain_id", "integer"}, {"batch_inbox_address", "hex-string"}},
	})

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "batch_inbox_address")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
