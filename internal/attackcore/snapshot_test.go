package attackcore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtureSnapshot(t *testing.T) string {
	t.Helper()
	ds, err := LoadBundleFile(fixtureBundle)
	require.NoError(t, err)

	digest, err := BundleDigest(fixtureBundle)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "attack-snapshot.db")
	require.NoError(t, WriteSnapshot(path, ds, digest))
	return path
}

func TestSnapshotRoundTrip(t *testing.T) {
	original, err := LoadBundleFile(fixtureBundle)
	require.NoError(t, err)

	path := writeFixtureSnapshot(t)
	restored, err := ReadSnapshot(path, fixtureBundle)
	require.NoError(t, err)

	assert.Equal(t, original.Techniques, restored.Techniques)
	assert.Equal(t, original.Tactics, restored.Tactics)
	assert.Equal(t, original.Mitigations, restored.Mitigations)
	assert.Equal(t, original.Detections, restored.Detections)
	assert.Equal(t, original.Subtechniques, restored.Subtechniques)
}

func TestSnapshotRejectsStaleDigest(t *testing.T) {
	ds, err := LoadBundleFile(fixtureBundle)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stale.db")
	require.NoError(t, WriteSnapshot(path, ds, "deadbeef"))

	_, err = ReadSnapshot(path, fixtureBundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale")
}

func TestSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "absent.db"), fixtureBundle)
	assert.Error(t, err)
}
