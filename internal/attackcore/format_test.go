package attackcore

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short stays intact", "Adversaries may do a thing.", "Adversaries may do a thing."},
		{"exact boundary stays intact", strings.Repeat("a", 150), strings.Repeat("a", 150)},
		{"long is cut with marker", strings.Repeat("b", 151), strings.Repeat("b", 150) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in))
		})
	}
}

func TestSummarizeCountsRunes(t *testing.T) {
	// 151 multi-byte runes must be cut at 150 runes, not 150 bytes.
	in := strings.Repeat("ü", 151)
	out := Summarize(in)
	assert.Equal(t, strings.Repeat("ü", 150)+"...", out)
}

func TestFormatTechniqueOmitsEmptySubtechniques(t *testing.T) {
	ds := loadFixture(t)
	kb, err := NewKnowledgeBase(ds)
	require.NoError(t, err)
	defer kb.Close()

	tech, ok := kb.Technique("T1059")
	require.True(t, ok)

	detail := FormatTechnique(kb, tech)
	data, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "subtechniques")
}

func TestFormatSearchMatchesEmpty(t *testing.T) {
	result := FormatSearchMatches(nil)
	assert.Equal(t, 0, result.Count)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results": [], "count": 0}`, string(data))
}

func TestFormatSearchMatchesCount(t *testing.T) {
	ds := loadFixture(t)
	result := FormatSearchMatches(ds.Techniques)
	assert.Equal(t, len(ds.Techniques), result.Count)
	assert.Len(t, result.Results, result.Count)
}
