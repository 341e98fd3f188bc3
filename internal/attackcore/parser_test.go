package attackcore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureBundle = "testdata/enterprise-attack.json"

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadBundleFile(fixtureBundle)
	require.NoError(t, err)
	return ds
}

func TestParseBundleTechniques(t *testing.T) {
	ds := loadFixture(t)

	require.Len(t, ds.Techniques, 3, "revoked techniques must be dropped")

	phishing := ds.Techniques[0]
	assert.Equal(t, "T1566", phishing.ID)
	assert.Equal(t, "Phishing", phishing.Name)
	assert.Equal(t, []string{"Linux", "macOS", "Windows"}, phishing.Platforms)
	assert.Equal(t, []string{"initial-access"}, phishing.KillChain)
	require.Len(t, phishing.ExternalReferences, 2)
	assert.Equal(t, "mitre-attack", phishing.ExternalReferences[0].SourceName)
	assert.False(t, phishing.IsSubtechnique)

	sub := ds.Techniques[1]
	assert.Equal(t, "T1566.001", sub.ID)
	assert.True(t, sub.IsSubtechnique)
}

func TestParseBundleTactics(t *testing.T) {
	ds := loadFixture(t)

	require.Len(t, ds.Tactics, 2)
	assert.Equal(t, "TA0001", ds.Tactics[0].ID)
	assert.Equal(t, "Initial Access", ds.Tactics[0].Name)
	assert.Equal(t, "TA0002", ds.Tactics[1].ID)
}

func TestParseBundleRelationships(t *testing.T) {
	ds := loadFixture(t)

	phishing := ds.Techniques[0]

	mitigations := ds.Mitigations[phishing.StixID]
	require.Len(t, mitigations, 1)
	assert.Equal(t, "M1049", mitigations[0].ID)
	assert.Equal(t, "Antivirus/Antimalware", mitigations[0].Name)

	detections := ds.Detections[phishing.StixID]
	require.Len(t, detections, 1)
	assert.Equal(t, "Application Log Content", detections[0].Source)
	assert.Contains(t, detections[0].Description, "Monitor for third-party application logging")

	subs := ds.Subtechniques[phishing.StixID]
	require.Len(t, subs, 1)
	assert.Equal(t, SubtechniqueRef{ID: "T1566.001", Name: "Spearphishing Attachment"}, subs[0])
}

func TestParseBundleSkipsRelationsToRevoked(t *testing.T) {
	ds := loadFixture(t)

	// The fixture carries a mitigates relationship targeting a revoked
	// technique; it must not resurface anywhere.
	for stixID := range ds.Mitigations {
		assert.NotEqual(t, "attack-pattern--a127c32c-cbb0-4f9d-be07-881a792408ec", stixID)
	}
}

func TestParseBundleRejectsGarbage(t *testing.T) {
	_, err := ParseBundle([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseBundle([]byte(`{"objects": []}`))
	assert.Error(t, err)

	_, err = ParseBundle([]byte(`{"objects": [{"type": "x-mitre-tactic", "id": "x", "name": "n"}]}`))
	assert.Error(t, err, "bundle without attack patterns is unusable")
}

func TestLoadBundleFileMissing(t *testing.T) {
	_, err := LoadBundleFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}
