package attackcore

// Reference is a citation attached to a technique detail.
type Reference struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

// TechniqueDetail is the full technique shape returned for an ID lookup.
// Subtechniques is present only when the technique has sub-techniques.
type TechniqueDetail struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Platforms     []string          `json:"platforms"`
	KillChain     []string          `json:"kill_chain"`
	References    []Reference       `json:"references"`
	Subtechniques []SubtechniqueRef `json:"subtechniques,omitempty"`
}

// SearchMatch is the short technique shape returned for a name search.
type SearchMatch struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchResult is the fuzzy-search response envelope. Count always equals
// len(Results).
type SearchResult struct {
	Results []SearchMatch `json:"results"`
	Count   int           `json:"count"`
}

const (
	summaryLength    = 150
	truncationMarker = "..."
)

// FormatTechnique assembles the full detail for a technique, resolving its
// sub-techniques from the knowledge base.
func FormatTechnique(kb *KnowledgeBase, tech Technique) *TechniqueDetail {
	refs := make([]Reference, 0, len(tech.ExternalReferences))
	for _, ref := range tech.ExternalReferences {
		refs = append(refs, Reference{Source: ref.SourceName, URL: ref.URL})
	}
	return &TechniqueDetail{
		ID:            tech.ID,
		Name:          tech.Name,
		Description:   tech.Description,
		Platforms:     tech.Platforms,
		KillChain:     tech.KillChain,
		References:    refs,
		Subtechniques: kb.SubtechniquesOf(tech.StixID),
	}
}

// FormatSearchMatches shapes name-search hits into the results/count
// envelope. Results is never nil so an empty search serializes as [].
func FormatSearchMatches(matches []Technique) *SearchResult {
	results := make([]SearchMatch, 0, len(matches))
	for _, tech := range matches {
		results = append(results, SearchMatch{
			ID:          tech.ID,
			Name:        tech.Name,
			Description: Summarize(tech.Description),
		})
	}
	return &SearchResult{Results: results, Count: len(results)}
}

// Summarize returns the first 150 characters of a description. The marker is
// appended only when content was actually cut off.
func Summarize(description string) string {
	runes := []rune(description)
	if len(runes) <= summaryLength {
		return description
	}
	return string(runes[:summaryLength]) + truncationMarker
}
