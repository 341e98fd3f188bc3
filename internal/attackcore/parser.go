package attackcore

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Dataset is the normalized, relationship-resolved form of an ATT&CK STIX
// bundle. It is plain data: the snapshot layer serializes it as-is, and
// KnowledgeBase builds its lookup structures from it.
type Dataset struct {
	Techniques    []Technique                  `json:"techniques"` // bundle order
	Tactics       []Tactic                     `json:"tactics"`    // bundle order
	Mitigations   map[string][]Mitigation      `json:"mitigations"`
	Detections    map[string][]Detection       `json:"detections"`
	Subtechniques map[string][]SubtechniqueRef `json:"subtechniques"`
}

// LoadError reports that the knowledge-base file could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading ATT&CK bundle %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadBundleFile reads and normalizes a STIX bundle from disk.
func LoadBundleFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	ds, err := ParseBundle(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ds, nil
}

// ParseBundle normalizes raw STIX bundle JSON into a Dataset. Revoked and
// deprecated objects are dropped, as are relationships touching them.
func ParseBundle(data []byte) (*Dataset, error) {
	var bundle STIXBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal STIX JSON: %w", err)
	}
	if len(bundle.Objects) == 0 {
		return nil, fmt.Errorf("bundle contains no objects")
	}

	ds := &Dataset{
		Mitigations:   make(map[string][]Mitigation),
		Detections:    make(map[string][]Detection),
		Subtechniques: make(map[string][]SubtechniqueRef),
	}

	// First pass: collect the entities relationships will refer to.
	techniques := make(map[string]Technique)   // stix ID -> technique
	mitigations := make(map[string]Mitigation) // stix ID -> mitigation
	components := make(map[string]STIXObject)  // stix ID -> data component
	seen := make(map[string]bool)              // public ID -> already indexed

	for _, obj := range bundle.Objects {
		if obj.Revoked || obj.Deprecated {
			continue
		}
		switch obj.Type {
		case "attack-pattern":
			publicID := firstExternalID(obj)
			if publicID == "" || seen[publicID] {
				continue
			}
			seen[publicID] = true
			tech := Technique{
				ID:                 publicID,
				StixID:             obj.ID,
				Name:               obj.Name,
				Description:        obj.Description,
				Platforms:          obj.Platforms,
				KillChain:          phaseNames(obj.KillChainPhases),
				ExternalReferences: obj.ExternalReferences,
				IsSubtechnique:     obj.IsSubtechnique,
			}
			ds.Techniques = append(ds.Techniques, tech)
			techniques[obj.ID] = tech
		case "x-mitre-tactic":
			publicID := firstExternalID(obj)
			if publicID == "" {
				continue
			}
			ds.Tactics = append(ds.Tactics, Tactic{
				ID:          publicID,
				Name:        obj.Name,
				Description: obj.Description,
			})
		case "course-of-action":
			publicID := firstExternalID(obj)
			if publicID == "" {
				continue
			}
			mitigations[obj.ID] = Mitigation{
				ID:          publicID,
				Name:        obj.Name,
				Description: obj.Description,
			}
		case "x-mitre-data-component":
			components[obj.ID] = obj
		}
	}

	if len(ds.Techniques) == 0 {
		return nil, fmt.Errorf("bundle contains no attack patterns")
	}

	// Second pass: resolve relationships against the collected entities.
	// Dangling references (filtered or unknown endpoints) are skipped.
	for _, obj := range bundle.Objects {
		if obj.Type != "relationship" || obj.Revoked || obj.Deprecated {
			continue
		}
		switch obj.RelationshipType {
		case "mitigates":
			tech, ok := techniques[obj.TargetRef]
			if !ok {
				continue
			}
			if m, ok := mitigations[obj.SourceRef]; ok {
				ds.Mitigations[tech.StixID] = append(ds.Mitigations[tech.StixID], m)
			}
		case "detects":
			tech, ok := techniques[obj.TargetRef]
			if !ok {
				continue
			}
			if comp, ok := components[obj.SourceRef]; ok {
				// The relationship carries the detection guidance; the
				// component description is only a fallback.
				description := obj.Description
				if description == "" {
					description = comp.Description
				}
				ds.Detections[tech.StixID] = append(ds.Detections[tech.StixID], Detection{
					Source:      comp.Name,
					Description: description,
				})
			}
		case "subtechnique-of":
			parent, ok := techniques[obj.TargetRef]
			if !ok {
				continue
			}
			if sub, ok := techniques[obj.SourceRef]; ok {
				ds.Subtechniques[parent.StixID] = append(ds.Subtechniques[parent.StixID], SubtechniqueRef{
					ID:   sub.ID,
					Name: sub.Name,
				})
			}
		}
	}

	for stixID := range ds.Subtechniques {
		subs := ds.Subtechniques[stixID]
		sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	}

	return ds, nil
}

// firstExternalID returns the public identifier from the object's first
// external reference. In ATT&CK bundles this is always the mitre-attack
// reference ("T1566", "TA0001", "M1049").
func firstExternalID(obj STIXObject) string {
	if len(obj.ExternalReferences) == 0 {
		return ""
	}
	return strings.ToUpper(obj.ExternalReferences[0].ExternalID)
}

func phaseNames(phases []KillChainPhase) []string {
	var names []string
	for _, phase := range phases {
		if phase.KillChainName == "mitre-attack" {
			names = append(names, phase.PhaseName)
		}
	}
	return names
}
