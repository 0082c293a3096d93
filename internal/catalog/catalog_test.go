package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 41, c.Len())
	assert.Len(t, c.Sections(), 10)
	assert.Same(t, c, Default())
}

func TestEmbedded_Partition(t *testing.T) {
	c := Default()

	seen := make(map[string]string)
	for _, section := range c.Sections() {
		for _, p := range section.Parameters {
			owner, dup := seen[p.ID]
			assert.Falsef(t, dup, "parameter %q appears in %q and %q", p.ID, owner, section.ID)
			seen[p.ID] = section.ID

			s, ok := c.SectionOf(p.ID)
			require.True(t, ok)
			assert.Equal(t, section.ID, s)
		}
	}
	assert.Len(t, seen, c.Len())
}

func TestEmbedded_Descriptors(t *testing.T) {
	c := Default()

	for _, p := range c.Parameters() {
		assert.Truef(t, p.Kind.Valid(), "parameter %q has kind %q", p.ID, p.Kind)
		assert.NotEmptyf(t, p.Title, "parameter %q has no title", p.ID)
		assert.NotEmptyf(t, p.Description, "parameter %q has no description", p.ID)
		assert.NotEmptyf(t, p.DeployKey, "parameter %q has no deploy key", p.ID)

		id, ok := c.ByDeployKey(p.DeployKey)
		require.True(t, ok)
		assert.Equal(t, p.ID, id)
	}
}

func TestEmbedded_SystemDefaults(t *testing.T) {
	c := Default()

	p, ok := c.Lookup("eip1559_denominator")
	require.True(t, ok)
	assert.Nil(t, p.SystemDefault)
	assert.True(t, p.Advanced)

	p, ok = c.Lookup("batch_inbox_address")
	require.True(t, ok)
	assert.Equal(t, "0xff69000000000000000000000000001201101712", p.SystemDefault)

	var withoutDefault []string
	for _, p := range c.Parameters() {
		if p.SystemDefault == nil {
			withoutDefault = append(withoutDefault, p.ID)
		}
	}
	assert.Equal(t, []string{"eip1559_denominator"}, withoutDefault)
}

func TestSections_ReturnsCopy(t *testing.T) {
	c := Default()

	sections := c.Sections()
	sections[0].Title = "changed"
	sections[0].Parameters[0].ID = "changed"

	again := c.Sections()
	assert.Equal(t, "Chain Information", again[0].Title)
	assert.Equal(t, "l2_chain_id", again[0].Parameters[0].ID)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid",
			doc: `
sections:
  - id: a
    parameters:
      - id: x
        kind: integer
`,
		},
		{
			name:    "no sections",
			doc:     "sections: []\n",
			wantErr: "catalog declares no sections",
		},
		{
			name: "duplicate parameter across sections",
			doc: `
sections:
  - id: a
    parameters:
      - id: x
        kind: integer
  - id: b
    parameters:
      - id: x
        kind: string
`,
			wantErr: `duplicate parameter id "x" (sections "a" and "b")`,
		},
		{
			name: "unknown kind",
			doc: `
sections:
  - id: a
    parameters:
      - id: x
        kind: float
`,
			wantErr: `unknown parameter kind "float"`,
		},
		{
			name: "empty section",
			doc: `
sections:
  - id: a
    parameters: []
`,
			wantErr: `section "a" has no parameters`,
		},
		{
			name: "duplicate deploy key",
			doc: `
sections:
  - id: a
    parameters:
      - id: x
        kind: integer
        deploy-key: k
      - id: y
        kind: integer
        deploy-key: k
`,
			wantErr: `share deploy key "k"`,
		},
		{
			name: "unknown field",
			doc: `
sections:
  - id: a
    parameters:
      - id: x
        kind: integer
        colour: red
`,
			wantErr: "colour",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load([]byte(tc.doc))
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, c)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Nil(t, c)
		})
	}
}

func TestLoad_TitleDefaultsToID(t *testing.T) {
	c, err := Load([]byte(`
sections:
  - id: a
    parameters:
      - id: x
        kind: boolean
      - id: y
        title: Why
        kind: string
`))
	require.NoError(t, err)

	x, _ := c.Lookup("x")
	y, _ := c.Lookup("y")
	assert.Equal(t, "x", x.Title)
	assert.Equal(t, "Why", y.Title)
	assert.Equal(t, "a", c.Sections()[0].Title)
	assert.Equal(t, []string{"x", "y"}, c.IDs())
}
