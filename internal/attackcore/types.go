package attackcore

// STIXBundle represents the top-level structure of the enterprise-attack.json file.
type STIXBundle struct {
	Objects []STIXObject `json:"objects"`
}

// STIXObject represents a single object within the bundle. The bundle mixes
// attack patterns, tactics, courses of action, data components and
// relationships in one flat list, so this carries the union of their fields.
type STIXObject struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	KillChainPhases    []KillChainPhase    `json:"kill_chain_phases"`
	ExternalReferences []ExternalReference `json:"external_references"`
	Platforms          []string            `json:"x_mitre_platforms"`
	IsSubtechnique     bool                `json:"x_mitre_is_subtechnique"`
	Revoked            bool                `json:"revoked"`
	Deprecated         bool                `json:"x_mitre_deprecated"`
	RelationshipType   string              `json:"relationship_type"`
	SourceRef          string              `json:"source_ref"`
	TargetRef          string              `json:"target_ref"`
}

// KillChainPhase represents the tactic (e.g., initial-access) an attack pattern belongs to.
type KillChainPhase struct {
	KillChainName string `json:"kill_chain_name"`
	PhaseName     string `json:"phase_name"`
}

// ExternalReference contains the mapping to the public ID, like "T1566", plus
// citation links.
type ExternalReference struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}

// Technique is a normalized attack technique record. ID is the public
// identifier from the first external reference ("T1059.001"); StixID is the
// bundle-internal identifier used to resolve relationships.
type Technique struct {
	ID                 string              `json:"id"`
	StixID             string              `json:"stix_id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	Platforms          []string            `json:"platforms"`
	KillChain          []string            `json:"kill_chain"`
	ExternalReferences []ExternalReference `json:"external_references"`
	IsSubtechnique     bool                `json:"is_subtechnique"`
}

// Mitigation is a course of action associated with one or more techniques.
type Mitigation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Detection names an observable signal source (data component) for a
// technique, with the detection guidance attached to the relationship.
type Detection struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

// Tactic is a high-level attacker goal category.
type Tactic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubtechniqueRef is the short form of a sub-technique carried on its parent.
type SubtechniqueRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
