package attackcore

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// nameDocument is what gets indexed per technique. NameFolded is the
// lowercased name stored as a single keyword term so a regexp query over it
// gives literal substring-containment semantics, not tokenized relevance
// matching.
type nameDocument struct {
	Name       string `json:"name"`
	NameFolded string `json:"name_folded"`
}

// nameIndex is a mem-only bleve index over technique names. Nothing persists
// to disk.
type nameIndex struct {
	index bleve.Index
	docs  uint64
}

func newNameIndex(techniques []Technique) (*nameIndex, error) {
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	textFieldMapping := bleve.NewTextFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("name_folded", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create name index: %w", err)
	}

	batch := index.NewBatch()
	for _, tech := range techniques {
		doc := nameDocument{
			Name:       tech.Name,
			NameFolded: strings.ToLower(tech.Name),
		}
		if err := batch.Index(strings.ToUpper(tech.ID), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index technique %s: %w", tech.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index technique names: %w", err)
	}

	count, err := index.DocCount()
	if err != nil {
		index.Close()
		return nil, err
	}

	return &nameIndex{index: index, docs: count}, nil
}

// search returns the IDs of techniques whose name contains the fragment,
// case-insensitively, sorted ascending. Relevance scores are discarded.
// The fragment is matched literally: regexp metacharacters (and the * and ?
// that a wildcard query would expand) are quoted.
func (ni *nameIndex) search(fragment string) ([]string, error) {
	query := bleve.NewRegexpQuery(".*" + regexp.QuoteMeta(strings.ToLower(fragment)) + ".*")
	query.SetField("name_folded")

	searchRequest := bleve.NewSearchRequest(query)
	searchRequest.Size = int(ni.docs)

	searchResults, err := ni.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("name search failed: %w", err)
	}

	ids := make([]string, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		ids = append(ids, hit.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (ni *nameIndex) close() error {
	return ni.index.Close()
}
