package attackcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureIndex(t *testing.T) *nameIndex {
	t.Helper()
	ds := loadFixture(t)
	ni, err := newNameIndex(ds.Techniques)
	require.NoError(t, err)
	t.Cleanup(func() { ni.close() })
	return ni
}

func TestNameIndexSubstringContainment(t *testing.T) {
	ni := newFixtureIndex(t)

	tests := []struct {
		fragment string
		want     []string
	}{
		{"phish", []string{"T1566", "T1566.001"}},
		{"PHISH", []string{"T1566", "T1566.001"}},
		{"Spearphishing Attachment", []string{"T1566.001"}},
		{"script", []string{"T1059"}},
		{"ph", []string{"T1566", "T1566.001"}},
	}
	for _, tt := range tests {
		got, err := ni.search(tt.fragment)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "fragment %q", tt.fragment)
	}
}

func TestNameIndexMatchesMetacharactersLiterally(t *testing.T) {
	ni := newFixtureIndex(t)

	// No technique name contains these characters, so none may match:
	// containment is literal, never pattern expansion.
	for _, fragment := range []string{"*", "?", "p?ish", "phish*", ".*", "(phish"} {
		got, err := ni.search(fragment)
		require.NoError(t, err)
		assert.Empty(t, got, "fragment %q", fragment)
	}
}

func TestNameIndexNoMatches(t *testing.T) {
	ni := newFixtureIndex(t)

	got, err := ni.search("zzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNameIndexDeterministicOrder(t *testing.T) {
	ni := newFixtureIndex(t)

	first, err := ni.search("a")
	require.NoError(t, err)
	second, err := ni.search("a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.IsNonDecreasing(t, first)
}
