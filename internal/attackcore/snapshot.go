package attackcore

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/boltdb/bolt"
)

// Snapshot bucket layout. Techniques and tactics use zero-padded ordinal keys
// so a cursor scan reproduces bundle order; relations are keyed by the
// technique's STIX ID.
const (
	techniqueBucket = "techniques"
	tacticBucket    = "tactics"
	relationBucket  = "relations"
	metaBucket      = "meta"

	digestKey  = "bundle_digest"
	createdKey = "created_at"
)

// relationEntry groups everything resolved against one technique.
type relationEntry struct {
	Mitigations   []Mitigation      `json:"mitigations,omitempty"`
	Detections    []Detection       `json:"detections,omitempty"`
	Subtechniques []SubtechniqueRef `json:"subtechniques,omitempty"`
}

// BundleDigest returns the sha256 of the bundle file, used to tie a snapshot
// to the exact input it was derived from.
func BundleDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read bundle for digest: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// WriteSnapshot persists a normalized dataset to a bolt database. The
// snapshot is a transparent cache of immutable input: deleting the file only
// costs a re-parse on next start.
func WriteSnapshot(path string, ds *Dataset, digest string) error {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{techniqueBucket, tacticBucket, relationBucket, metaBucket} {
			if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
				return fmt.Errorf("failed to reset bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		techniques := tx.Bucket([]byte(techniqueBucket))
		for i, tech := range ds.Techniques {
			data, err := json.Marshal(tech)
			if err != nil {
				return fmt.Errorf("failed to marshal technique %s: %w", tech.ID, err)
			}
			if err := techniques.Put(ordinalKey(i), data); err != nil {
				return err
			}
		}

		tactics := tx.Bucket([]byte(tacticBucket))
		for i, tactic := range ds.Tactics {
			data, err := json.Marshal(tactic)
			if err != nil {
				return fmt.Errorf("failed to marshal tactic %s: %w", tactic.ID, err)
			}
			if err := tactics.Put(ordinalKey(i), data); err != nil {
				return err
			}
		}

		relations := tx.Bucket([]byte(relationBucket))
		for _, tech := range ds.Techniques {
			entry := relationEntry{
				Mitigations:   ds.Mitigations[tech.StixID],
				Detections:    ds.Detections[tech.StixID],
				Subtechniques: ds.Subtechniques[tech.StixID],
			}
			if entry.Mitigations == nil && entry.Detections == nil && entry.Subtechniques == nil {
				continue
			}
			data, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("failed to marshal relations for %s: %w", tech.ID, err)
			}
			if err := relations.Put([]byte(tech.StixID), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket([]byte(metaBucket))
		if err := meta.Put([]byte(digestKey), []byte(digest)); err != nil {
			return err
		}
		return meta.Put([]byte(createdKey), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// ReadSnapshot loads a dataset from a snapshot, refusing one whose recorded
// digest does not match the current bundle file.
func ReadSnapshot(path, bundlePath string) (*Dataset, error) {
	currentDigest, err := BundleDigest(bundlePath)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	ds := &Dataset{
		Mitigations:   make(map[string][]Mitigation),
		Detections:    make(map[string][]Detection),
		Subtechniques: make(map[string][]SubtechniqueRef),
	}

	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket([]byte(metaBucket))
		if meta == nil {
			return fmt.Errorf("meta bucket not found")
		}
		recorded := meta.Get([]byte(digestKey))
		if string(recorded) != currentDigest {
			return fmt.Errorf("snapshot is stale: bundle digest changed")
		}

		techniques := tx.Bucket([]byte(techniqueBucket))
		if techniques == nil {
			return fmt.Errorf("technique bucket not found")
		}
		cursor := techniques.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var tech Technique
			if err := json.Unmarshal(value, &tech); err != nil {
				return fmt.Errorf("failed to unmarshal technique %s: %w", string(key), err)
			}
			ds.Techniques = append(ds.Techniques, tech)
		}

		tactics := tx.Bucket([]byte(tacticBucket))
		if tactics == nil {
			return fmt.Errorf("tactic bucket not found")
		}
		cursor = tactics.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var tactic Tactic
			if err := json.Unmarshal(value, &tactic); err != nil {
				return fmt.Errorf("failed to unmarshal tactic %s: %w", string(key), err)
			}
			ds.Tactics = append(ds.Tactics, tactic)
		}

		relations := tx.Bucket([]byte(relationBucket))
		if relations == nil {
			return fmt.Errorf("relation bucket not found")
		}
		cursor = relations.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var entry relationEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return fmt.Errorf("failed to unmarshal relations %s: %w", string(key), err)
			}
			stixID := string(key)
			if entry.Mitigations != nil {
				ds.Mitigations[stixID] = entry.Mitigations
			}
			if entry.Detections != nil {
				ds.Detections[stixID] = entry.Detections
			}
			if entry.Subtechniques != nil {
				ds.Subtechniques[stixID] = entry.Subtechniques
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ds.Techniques) == 0 {
		return nil, fmt.Errorf("snapshot contains no techniques")
	}
	return ds, nil
}

func ordinalKey(i int) []byte {
	return []byte(fmt.Sprintf("%06d", i))
}
