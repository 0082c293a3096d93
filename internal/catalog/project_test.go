package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSections() []Section {
	return []Section{
		{ID: "one", Title: "One", Parameters: []Parameter{
			{ID: "a", Kind: KindInteger},
			{ID: "b", Kind: KindString, Advanced: true},
			{ID: "c", Kind: KindBoolean},
		}},
		{ID: "two", Title: "Two", Parameters: []Parameter{
			{ID: "d", Kind: KindHexString, Advanced: true},
		}},
		{ID: "three", Title: "Three", Parameters: []Parameter{
			{ID: "e", Kind: KindInteger},
		}},
	}
}

func ids(sections []Section) []string {
	var out []string
	for _, s := range sections {
		for _, p := range s.Parameters {
			out = append(out, p.ID)
		}
	}
	return out
}

func TestProject_Basic(t *testing.T) {
	got := Project(sampleSections(), ModeBasic)

	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].ID)
	assert.Equal(t, "three", got[1].ID)
	assert.Equal(t, []string{"a", "c", "e"}, ids(got))
}

func TestProject_AdvancedIsIdentity(t *testing.T) {
	in := sampleSections()
	got := Project(in, ModeAdvanced)

	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("advanced projection changed the catalog (-want +got):\n%s", diff)
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	in := sampleSections()
	_ = Project(in, ModeBasic)

	if diff := cmp.Diff(sampleSections(), in); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestProject_Idempotent(t *testing.T) {
	sections := Default().Sections()

	for _, mode := range []Mode{ModeBasic, ModeAdvanced} {
		t.Run(string(mode), func(t *testing.T) {
			once := Project(sections, mode)
			twice := Project(once, mode)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Fatalf("projection is not idempotent (-once +twice):\n%s", diff)
			}
			if diff := cmp.Diff(once, Project(sections, mode)); diff != "" {
				t.Fatalf("projection is not deterministic (-first +second):\n%s", diff)
			}
		})
	}
}

func TestProject_PartitionInvariant(t *testing.T) {
	c := Default()
	all := make(map[string]struct{})
	for _, id := range c.IDs() {
		all[id] = struct{}{}
	}

	for _, mode := range []Mode{ModeBasic, ModeAdvanced} {
		t.Run(string(mode), func(t *testing.T) {
			seen := make(map[string]struct{})
			for _, section := range c.Visible(mode) {
				assert.NotEmpty(t, section.Parameters)
				for _, p := range section.Parameters {
					_, known := all[p.ID]
					assert.Truef(t, known, "projected parameter %q is not in the catalog", p.ID)
					_, dup := seen[p.ID]
					assert.Falsef(t, dup, "parameter %q appears twice", p.ID)
					seen[p.ID] = struct{}{}
				}
			}
		})
	}
}

func TestProject_BasicCatalog(t *testing.T) {
	got := Default().Visible(ModeBasic)

	assert.Equal(t, []string{
		"l2_chain_id",
		"finalization_period_seconds",
		"l2_block_time",
		"enable_governance",
		"governance_token_symbol",
		"governance_token_name",
	}, ids(got))

	var sectionIDs []string
	for _, s := range got {
		sectionIDs = append(sectionIDs, s.ID)
	}
	assert.Equal(t, []string{"chain-information", "proposal-fields", "blocks", "governance"}, sectionIDs)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("basic")
	require.NoError(t, err)
	assert.Equal(t, ModeBasic, m)

	m, err = ParseMode("advanced")
	require.NoError(t, err)
	assert.Equal(t, ModeAdvanced, m)

	_, err = ParseMode("expert")
	assert.ErrorContains(t, err, `unknown visibility mode "expert"`)
}
