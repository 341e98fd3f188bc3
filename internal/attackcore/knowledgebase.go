package attackcore

import (
	"fmt"
	"strings"
)

// KnowledgeBase is the immutable, in-memory ATT&CK object graph. It is built
// exactly once (see Loader) and never mutated afterwards, so concurrent
// readers need no synchronization.
type KnowledgeBase struct {
	ds    *Dataset
	index map[string]Technique // uppercase public ID -> technique
	names *nameIndex
}

// NewKnowledgeBase builds the technique index and the name-search index from
// a normalized dataset.
func NewKnowledgeBase(ds *Dataset) (*KnowledgeBase, error) {
	index := make(map[string]Technique, len(ds.Techniques))
	for _, tech := range ds.Techniques {
		key := strings.ToUpper(tech.ID)
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate technique ID %s in dataset", key)
		}
		index[key] = tech
	}

	names, err := newNameIndex(ds.Techniques)
	if err != nil {
		return nil, fmt.Errorf("building name index: %w", err)
	}

	return &KnowledgeBase{ds: ds, index: index, names: names}, nil
}

// Technique looks up a technique by public identifier, case-insensitively.
func (kb *KnowledgeBase) Technique(id string) (Technique, bool) {
	tech, ok := kb.index[strings.ToUpper(id)]
	return tech, ok
}

// SearchNames returns every technique whose name contains the fragment,
// case-insensitively, ordered by technique ID.
func (kb *KnowledgeBase) SearchNames(fragment string) ([]Technique, error) {
	ids, err := kb.names.search(fragment)
	if err != nil {
		return nil, err
	}
	matches := make([]Technique, 0, len(ids))
	for _, id := range ids {
		if tech, ok := kb.index[id]; ok {
			matches = append(matches, tech)
		}
	}
	return matches, nil
}

// Tactics returns all tactics in bundle order.
func (kb *KnowledgeBase) Tactics() []Tactic {
	return kb.ds.Tactics
}

// MitigationsFor returns the mitigations associated with a technique's STIX
// identifier, in bundle relationship order.
func (kb *KnowledgeBase) MitigationsFor(stixID string) []Mitigation {
	return kb.ds.Mitigations[stixID]
}

// DetectionsFor returns the detecting data components for a technique's STIX
// identifier.
func (kb *KnowledgeBase) DetectionsFor(stixID string) []Detection {
	return kb.ds.Detections[stixID]
}

// SubtechniquesOf returns the sub-technique summaries of a parent technique,
// ordered by ID. The slice is nil for techniques without sub-techniques.
func (kb *KnowledgeBase) SubtechniquesOf(stixID string) []SubtechniqueRef {
	return kb.ds.Subtechniques[stixID]
}

// TechniqueCount reports how many techniques are indexed.
func (kb *KnowledgeBase) TechniqueCount() int {
	return len(kb.index)
}

// Close releases the name index.
func (kb *KnowledgeBase) Close() error {
	return kb.names.close()
}
