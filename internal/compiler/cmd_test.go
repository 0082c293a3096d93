package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/compose-network/rollup-configurator/internal/filesystem"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordYAML = `config:
  l1_chain_id: 5
  l2_chain_id: 1234
  batch_inbox_address: 0xff69000000000000000000000000001201101712
  eip1559_denominator: 50
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileFile_RecordChainIDWins(t *testing.T) {
	path := writeFile(t, "rollup.yaml", recordYAML)

	_, err := CompileFile(filesystem.NewReader(), path, 1, false)

	assert.ErrorIs(t, err, l1.ErrNotSupported)
}

func TestCompileFile_Override(t *testing.T) {
	path := writeFile(t, "rollup.yaml", recordYAML)

	b, err := CompileFile(filesystem.NewReader(), path, 1, true)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), b.L1ChainID())
	v, ok := b.Get("batch_inbox_address")
	require.True(t, ok)
	assert.Equal(t, "0xff69000000000000000000000000001201101712", v.Text())
}

func TestCompileFile_JSON(t *testing.T) {
	path := writeFile(t, "rollup.json", `{"l2_chain_id": 1234, "eip1559_denominator": 50}`)

	b, err := CompileFile(filesystem.NewReader(), path, 1, false)
	require.NoError(t, err)

	v, _ := b.Get("l2_chain_id")
	assert.Equal(t, int64(1234), v.Int())
}

func TestCompileFile_Missing(t *testing.T) {
	_, err := CompileFile(filesystem.NewReader(), filepath.Join(t.TempDir(), "nope.yaml"), 1, false)
	assert.ErrorContains(t, err, "failed to read file")
}

func TestPrintErrors(t *testing.T) {
	path := writeFile(t, "rollup.yaml", "batch_inbox_address: ff69\n")

	_, err := CompileFile(filesystem.NewReader(), path, 1, false)
	require.Error(t, err)

	var buf bytes.Buffer
	PrintErrors(&buf, err)

	out := buf.String()
	assert.Contains(t, out, "batch_inbox_address")
	assert.Contains(t, out, string(schema.ReasonMissingPrefix))
	assert.Contains(t, out, "eip1559_denominator")
	assert.Contains(t, out, "no_default")
}

func TestPrintErrors_IgnoresOtherErrors(t *testing.T) {
	var buf bytes.Buffer
	PrintErrors(&buf, assert.AnError)
	assert.Empty(t, buf.String())
}

func TestBundleTable(t *testing.T) {
	b, err := NewDefault().Compile(fullRecord(), 1)
	require.NoError(t, err)

	table := BundleTable(b)

	require.Len(t, table.Rows, len(b.Keys()))
	assert.Equal(t, []string{"l1_chain_id", "1"}, table.Rows[0])
	assert.Equal(t, []string{"l1_use_clique", "true"}, table.Rows[2])
}
