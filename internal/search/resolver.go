package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"propertybw/internal/model"
)

// ErrQueryTooShort is returned for queries the resolver refuses to run.
// No downstream call is made in that case.
var ErrQueryTooShort = errors.New("search query must be at least 2 characters")

// Interpreter converts free text into a structured filter payload with an
// explanation and confidence score.
type Interpreter interface {
	Interpret(ctx context.Context, query string) (*model.AIFilterPayload, error)
}

// Resolution is the outcome of resolving a free-text query.
type Resolution struct {
	Results     []model.Property
	Filters     *model.FilterState
	Explanation string
	Confidence  float64
	Degraded    bool
}

// Resolver turns free-text queries into result sets. The interpreter path
// is primary; any failure there falls back to a local substring match over
// the loaded properties. The fallback never surfaces as a hard error.
type Resolver struct {
	interp         Interpreter
	minQueryLength int
	logger         *zap.Logger
}

// NewResolver creates a resolver. interp may be nil, in which case every
// query takes the local fallback path.
func NewResolver(interp Interpreter, minQueryLength int, logger *zap.Logger) *Resolver {
	if minQueryLength < 1 {
		minQueryLength = 2
	}
	return &Resolver{
		interp:         interp,
		minQueryLength: minQueryLength,
		logger:         logger,
	}
}

// Resolve validates the query, attempts interpretation, and derives the
// result set. The AI attempt and the fallback are sequential: the fallback
// runs only once the primary path has definitively failed.
func (r *Resolver) Resolve(ctx context.Context, query string, current model.FilterState, loaded []model.Property) (*Resolution, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < r.minQueryLength {
		return nil, ErrQueryTooShort
	}

	if r.interp == nil {
		return r.fallback(query, loaded), nil
	}

	payload, err := r.interp.Interpret(ctx, query)
	if err != nil {
		r.logger.Warn("query interpretation failed, using local match",
			zap.String("query", query), zap.Error(err))
		return r.fallback(query, loaded), nil
	}

	merged := model.MergeAIFilters(current, payload)
	if payload.Location != nil && merged.SearchTerm == "" {
		merged.SearchTerm = *payload.Location
	}
	if err := merged.Validate(); err != nil {
		// The interpreter produced an unusable filter set; treat it the
		// same as any other failure of the primary path.
		r.logger.Warn("interpreted filters rejected, using local match",
			zap.String("query", query), zap.Error(err))
		return r.fallback(query, loaded), nil
	}

	results := ApplyFilters(loaded, merged)

	return &Resolution{
		Results:     results,
		Filters:     &merged,
		Explanation: payload.Explanation,
		Confidence:  clampConfidence(payload.Confidence),
	}, nil
}

func (r *Resolver) fallback(query string, loaded []model.Property) *Resolution {
	return &Resolution{
		Results:  LocalMatch(loaded, query),
		Degraded: true,
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
