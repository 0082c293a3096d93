package compiler

import (
	"errors"
	"testing"

	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type spyValidator struct {
	mock.Mock
}

func (s *spyValidator) Catalog() *catalog.Catalog {
	return s.Called().Get(0).(*catalog.Catalog)
}

func (s *spyValidator) Default(fieldID string) (any, bool) {
	args := s.Called(fieldID)
	return args.Get(0), args.Bool(1)
}

func (s *spyValidator) ValidateAll(record map[string]any) (*schema.Candidate, error) {
	args := s.Called(record)
	candidate, _ := args.Get(0).(*schema.Candidate)
	return candidate, args.Error(1)
}

// fullRecord supplies every field, including the one without a system default.
func fullRecord() map[string]any {
	record := schema.Default().Defaults()
	record["eip1559_denominator"] = 50
	return record
}

func TestCompile_DerivesL1Settings(t *testing.T) {
	raw := map[string]any{
		"l2_chain_id":         1234,
		"batch_inbox_address": "0xff69000000000000000000000000001201101712",
		"eip1559_denominator": 50,
	}

	b, err := NewDefault().Compile(raw, 1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), b.L1ChainID())
	assert.Equal(t, uint64(12), b.L1BlockTime())
	assert.True(t, b.L1UseClique())

	v, ok := b.Get("l2_chain_id")
	require.True(t, ok)
	assert.Equal(t, int64(1234), v.Int())

	v, ok = b.Get("batch_inbox_address")
	require.True(t, ok)
	assert.Equal(t, "0xff69000000000000000000000000001201101712", v.Text())
}

func TestCompile_MissingFieldWithoutDefault(t *testing.T) {
	raw := fullRecord()
	delete(raw, "eip1559_denominator")

	b, err := NewDefault().Compile(raw, 1)
	assert.Nil(t, b)

	var errs *schema.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, []string{"eip1559_denominator"}, errs.IDs())

	var cfgErr *schema.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "eip1559_denominator", cfgErr.Field)
	assert.Empty(t, errs.Fields)
}

func TestCompile_HexWithoutPrefix(t *testing.T) {
	raw := fullRecord()
	raw["fault_game_absolute_prestate"] = "abc123"
	raw["l2_block_time"] = "two"
	delete(raw, "eip1559_denominator")

	b, err := NewDefault().Compile(raw, 1)
	assert.Nil(t, b)

	var errs *schema.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, []string{"eip1559_denominator", "fault_game_absolute_prestate", "l2_block_time"}, errs.IDs())

	prestate := errs.Fields["fault_game_absolute_prestate"]
	require.NotNil(t, prestate)
	assert.Equal(t, schema.ReasonMissingPrefix, prestate.Reason)
	assert.Equal(t, schema.ReasonWrongType, errs.Fields["l2_block_time"].Reason)
	assert.Contains(t, errs.Configuration, "eip1559_denominator")
}

func TestCompile_UnsupportedChainSkipsValidation(t *testing.T) {
	for _, chainID := range []uint64{0, 2, 10, 11155111} {
		spy := new(spyValidator)

		b, err := New(l1.NewResolver(), spy).Compile(fullRecord(), chainID)
		assert.Nil(t, b)
		assert.ErrorIs(t, err, l1.ErrNotSupported)

		var notSupported *l1.NotSupportedError
		require.True(t, errors.As(err, &notSupported))
		assert.Equal(t, chainID, notSupported.ChainID)

		spy.AssertNotCalled(t, "ValidateAll", mock.Anything)
		spy.AssertNotCalled(t, "Default", mock.Anything)
		spy.AssertNotCalled(t, "Catalog")
	}
}

func TestCompile_FieldSet(t *testing.T) {
	b, err := NewDefault().Compile(fullRecord(), 1)
	require.NoError(t, err)

	want := append([]string{bundle.KeyL1ChainID, bundle.KeyL1BlockTime, bundle.KeyL1UseClique}, catalog.Default().IDs()...)
	assert.ElementsMatch(t, want, b.Keys())
	assert.Len(t, b.Fields(), catalog.Default().Len())
}

func TestCompile_DefaultsIgnoreVisibility(t *testing.T) {
	// Only the basic-mode fields are supplied, as a basic form would submit.
	raw := map[string]any{}
	for _, s := range catalog.Default().Visible(catalog.ModeBasic) {
		for _, p := range s.Parameters {
			if def, ok := schema.Default().Default(p.ID); ok {
				raw[p.ID] = def
			}
		}
	}
	raw["eip1559_denominator"] = 250

	b, err := NewDefault().Compile(raw, 1)
	require.NoError(t, err)

	v, ok := b.Get("fault_game_max_depth")
	require.True(t, ok)
	assert.Equal(t, int64(30), v.Int())
}

func TestCompile_HiddenFieldWithoutDefaultFailsClosed(t *testing.T) {
	// A basic form never shows eip1559_denominator, so it cannot be supplied.
	raw := map[string]any{}
	for _, s := range catalog.Default().Visible(catalog.ModeBasic) {
		for _, p := range s.Parameters {
			require.NotEqual(t, "eip1559_denominator", p.ID)
			if def, ok := schema.Default().Default(p.ID); ok {
				raw[p.ID] = def
			}
		}
	}

	b, err := NewDefault().Compile(raw, 1)
	assert.Nil(t, b)

	var cfgErr *schema.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "eip1559_denominator", cfgErr.Field)
}

func TestCompile_SuppliedValueWinsOverDefault(t *testing.T) {
	raw := fullRecord()
	raw["channel_timeout"] = 300

	b, err := NewDefault().Compile(raw, 1)
	require.NoError(t, err)

	v, _ := b.Get("channel_timeout")
	assert.Equal(t, int64(300), v.Int())
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"eip1559_denominator": 50}

	_, err := NewDefault().Compile(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"eip1559_denominator": 50}, raw)
}

func TestCompile_RoundTrip(t *testing.T) {
	raw := fullRecord()
	raw["enable_governance"] = "true"
	raw["fault_game_genesis_output_root"] = "0x00aBcD"

	b, err := NewDefault().Compile(raw, 1)
	require.NoError(t, err)

	data, err := b.MarshalJSON()
	require.NoError(t, err)

	decoded, err := bundle.Decode(data, schema.Default(), l1.NewResolver())
	require.NoError(t, err)
	assert.True(t, b.Equal(decoded))

	v, _ := decoded.Get("enable_governance")
	assert.Equal(t, true, v.Bool())
	v, _ = decoded.Get("fault_game_genesis_output_root")
	assert.Equal(t, "0x00aBcD", v.Text())
}
