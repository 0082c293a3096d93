package input

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_YAMLKeepsHexText(t *testing.T) {
	record, err := Decode([]byte(`
l2_chain_id: 1234
l2_genesis_block_gas_limit: 0x2faf080
batch_inbox_address: 0xff69000000000000000000000000001201101712
fault_game_genesis_output_root: "0xDEAD"
enable_governance: true
governance_token_symbol: OP
`), FormatYAML)
	require.NoError(t, err)

	want := map[string]any{
		"l2_chain_id":                    1234,
		"l2_genesis_block_gas_limit":     "0x2faf080",
		"batch_inbox_address":            "0xff69000000000000000000000000001201101712",
		"fault_game_genesis_output_root": "0xDEAD",
		"enable_governance":              true,
		"governance_token_symbol":        "OP",
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_JSON(t *testing.T) {
	record, err := Decode([]byte(`{"config": {"l2_chain_id": 1234, "fund_dev_accounts": false}}`), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"l2_chain_id":       json.Number("1234"),
		"fund_dev_accounts": false,
	}, record)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "yaml sequence", data: "- a\n- b\n", format: FormatYAML},
		{name: "yaml duplicate key", data: "a: 1\na: 2\n", format: FormatYAML},
		{name: "yaml syntax", data: "a: [", format: FormatYAML},
		{name: "json array", data: "[1]", format: FormatJSON},
		{name: "json null", data: "null", format: FormatJSON},
		{name: "unknown format", data: "{}", format: Format("toml")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.data), tc.format)
			assert.Error(t, err)
		})
	}
}

func TestDecode_EmptyYAML(t *testing.T) {
	record, err := Decode(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, record)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf("bundle.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("rollup.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("-"))
}

func TestSplitChainID(t *testing.T) {
	record := map[string]any{"l1_chain_id": json.Number("1"), "l1_block_time": 12, "l1_use_clique": true, "l2_chain_id": 5}

	id, ok, err := SplitChainID(record)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, map[string]any{"l2_chain_id": 5}, record)

	_, ok, err = SplitChainID(map[string]any{})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = SplitChainID(map[string]any{"l1_chain_id": "main"})
	assert.Error(t, err)
}
