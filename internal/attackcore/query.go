package attackcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrMissingParameter signals a request that supplied neither a technique ID
// nor a name fragment. The host layer maps it to a client error, distinct
// from the not-found result.
var ErrMissingParameter = errors.New("either technique_id or tech_name must be provided")

// NotFoundResult is the structured shape returned when a supplied technique
// identifier has no match. It is a value, never an error: callers check the
// shape rather than rely on exceptional control flow.
type NotFoundResult struct {
	Error string `json:"error"`
}

func notFound(techniqueID string) *NotFoundResult {
	return &NotFoundResult{Error: fmt.Sprintf("technique ID %s not found", techniqueID)}
}

// TechniqueOutcome is the result of QueryTechnique. Exactly one field is set.
type TechniqueOutcome struct {
	Detail   *TechniqueDetail
	Search   *SearchResult
	NotFound *NotFoundResult
}

// Body returns the value to serialize back to the caller.
func (o *TechniqueOutcome) Body() any {
	switch {
	case o.Detail != nil:
		return o.Detail
	case o.Search != nil:
		return o.Search
	default:
		return o.NotFound
	}
}

// MitigationsOutcome is the result of QueryMitigations. Mitigations is a
// non-nil (possibly empty) list unless NotFound is set.
type MitigationsOutcome struct {
	Mitigations []Mitigation
	NotFound    *NotFoundResult
}

func (o *MitigationsOutcome) Body() any {
	if o.NotFound != nil {
		return o.NotFound
	}
	return o.Mitigations
}

// DetectionsOutcome is the result of QueryDetections.
type DetectionsOutcome struct {
	Detections []Detection
	NotFound   *NotFoundResult
}

func (o *DetectionsOutcome) Body() any {
	if o.NotFound != nil {
		return o.NotFound
	}
	return o.Detections
}

// Engine answers the four read operations over the lazily-loaded knowledge
// base. All methods trigger the one-time load as a side effect of first use.
type Engine struct {
	loader *Loader
	logger *slog.Logger
}

// NewEngine creates a query engine over a loader.
func NewEngine(loader *Loader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{loader: loader, logger: logger.With("component", "query")}
}

// QueryTechnique looks a technique up by ID, or searches by name fragment
// when no ID is given. The ID takes priority when both are supplied.
func (e *Engine) QueryTechnique(ctx context.Context, techniqueID, techName string) (*TechniqueOutcome, error) {
	kb, err := e.loader.Get()
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "technique query received", "technique_id", techniqueID, "tech_name", techName)

	switch {
	case techniqueID != "":
		tech, ok := kb.Technique(techniqueID)
		if !ok {
			e.logger.WarnContext(ctx, "technique not found", "technique_id", techniqueID)
			return &TechniqueOutcome{NotFound: notFound(techniqueID)}, nil
		}
		e.logger.InfoContext(ctx, "technique found", "technique_id", tech.ID, "name", tech.Name)
		return &TechniqueOutcome{Detail: FormatTechnique(kb, tech)}, nil

	case techName != "":
		matches, err := kb.SearchNames(techName)
		if err != nil {
			return nil, fmt.Errorf("name search for %q: %w", techName, err)
		}
		result := FormatSearchMatches(matches)
		e.logger.InfoContext(ctx, "name search completed", "tech_name", techName, "count", result.Count)
		return &TechniqueOutcome{Search: result}, nil

	default:
		return nil, ErrMissingParameter
	}
}

// QueryMitigations returns the mitigations for a technique.
func (e *Engine) QueryMitigations(ctx context.Context, techniqueID string) (*MitigationsOutcome, error) {
	kb, err := e.loader.Get()
	if err != nil {
		return nil, err
	}
	if techniqueID == "" {
		return nil, ErrMissingParameter
	}
	e.logger.InfoContext(ctx, "mitigations query received", "technique_id", techniqueID)

	tech, ok := kb.Technique(techniqueID)
	if !ok {
		return &MitigationsOutcome{NotFound: notFound(techniqueID)}, nil
	}

	mitigations := kb.MitigationsFor(tech.StixID)
	if mitigations == nil {
		mitigations = []Mitigation{}
	}
	e.logger.InfoContext(ctx, "mitigations query completed", "technique_id", tech.ID, "count", len(mitigations))
	return &MitigationsOutcome{Mitigations: mitigations}, nil
}

// QueryDetections returns the detecting data components for a technique.
func (e *Engine) QueryDetections(ctx context.Context, techniqueID string) (*DetectionsOutcome, error) {
	kb, err := e.loader.Get()
	if err != nil {
		return nil, err
	}
	if techniqueID == "" {
		return nil, ErrMissingParameter
	}
	e.logger.InfoContext(ctx, "detections query received", "technique_id", techniqueID)

	tech, ok := kb.Technique(techniqueID)
	if !ok {
		return &DetectionsOutcome{NotFound: notFound(techniqueID)}, nil
	}

	detections := kb.DetectionsFor(tech.StixID)
	if detections == nil {
		detections = []Detection{}
	}
	e.logger.InfoContext(ctx, "detections query completed", "technique_id", tech.ID, "count", len(detections))
	return &DetectionsOutcome{Detections: detections}, nil
}

// ListTactics returns every tactic in dataset order.
func (e *Engine) ListTactics(ctx context.Context) ([]Tactic, error) {
	kb, err := e.loader.Get()
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "tactics list requested")

	tactics := kb.Tactics()
	if tactics == nil {
		tactics = []Tactic{}
	}
	e.logger.InfoContext(ctx, "tactics list completed", "count", len(tactics))
	return tactics, nil
}
