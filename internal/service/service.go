// Package service orchestrates the full chart pipeline: extract, validate,
// synthesize, execute, filter, and shape. It owns no policy of its own; every
// security decision happens in the query and results packages.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vibecharting/chartsafe/internal/cache"
	"github.com/vibecharting/chartsafe/internal/chart"
	"github.com/vibecharting/chartsafe/internal/errors"
	"github.com/vibecharting/chartsafe/internal/llm"
	"github.com/vibecharting/chartsafe/internal/logging"
	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/schema"
	"github.com/vibecharting/chartsafe/internal/storage"
)

// Request is one chart request: either a natural-language message to extract
// from, or a pre-built structured request, plus an optional forced chart type
// that overrides whatever the extraction chose.
type Request struct {
	Message    string              `json:"message,omitempty"`
	Structured *query.ChartRequest `json:"request,omitempty"`
	ForcedType string              `json:"forced_type,omitempty"`
	Language   string              `json:"language,omitempty"`
}

// Response is the assembled answer for an accepted request.
type Response struct {
	RequestID string        `json:"request_id"`
	Spec      chart.Spec    `json:"chart_spec"`
	Rows      []results.Row `json:"rows"`
	SQL       string        `json:"sql"`
	Title     string        `json:"title,omitempty"`
	Cached    bool          `json:"cached"`
}

// Rejection is the client-facing shape for a refused request.
type Rejection struct {
	RequestID string          `json:"request_id"`
	Wire      query.WireError `json:"error"`
}

// Service wires the pipeline together around one catalog refresher and one
// storage backend.
type Service struct {
	refresher *schema.Refresher
	store     storage.Store
	extractor llm.Service
	validator *query.Validator
	builder   *query.Builder
	filter    *results.Filter
	responses *cache.ResponseCache // nil disables caching
}

// Options configures optional service behavior.
type Options struct {
	Extractor llm.Service
	Cache     *cache.ResponseCache
	Limits    query.Limits
}

// New creates the orchestrator. The refresher's denylist also drives result
// filtering so both PII layers share one source of truth.
func New(refresher *schema.Refresher, store storage.Store, opts Options) *Service {
	limits := opts.Limits
	if limits.MaxRows <= 0 {
		limits = query.DefaultLimits()
	}

	return &Service{
		refresher: refresher,
		store:     store,
		extractor: opts.Extractor,
		validator: query.NewValidator(),
		builder:   query.NewBuilder(store.Dialect(), limits),
		filter:    results.NewFilter(refresher.Catalog().Denylist()),
		responses: opts.Cache,
	}
}

// HandleChart runs the full pipeline. Validation failures return a
// *Rejection; infrastructure failures return an error.
func (s *Service) HandleChart(ctx context.Context, req Request) (*Response, *Rejection, error) {
	requestID := uuid.NewString()
	log := logging.WithField("request_id", requestID)
	start := time.Now()

	cacheKey := ""
	if s.responses != nil && req.Message != "" && req.Structured == nil {
		cacheKey = cache.Key(req.Message, req.Language, req.ForcedType)
		if hit, ok := s.responses.Get(cacheKey); ok {
			resp := hit.(*Response)
			cached := *resp
			cached.RequestID = requestID
			cached.Cached = true
			log.Debug("served chart response from cache")

			return &cached, nil, nil
		}
	}

	cat := s.refresher.Catalog()

	chartReq, err := s.resolveRequest(ctx, req, cat)
	if err != nil {
		return nil, nil, err
	}

	if req.ForcedType != "" {
		chartReq.ChartType = req.ForcedType
	}

	resp, verr, err := s.run(ctx, requestID, chartReq, cat)
	if err != nil {
		return nil, nil, err
	}

	// One corrective reprompt when an extracted scatter-family request
	// failed on axis types: the model gets the numeric columns and a second
	// chance before the client sees the rejection.
	if verr != nil && req.Structured == nil {
		if corrected := s.correctExtraction(ctx, req, cat, chartReq, verr); corrected != nil {
			if req.ForcedType != "" {
				corrected.ChartType = req.ForcedType
			}

			resp, verr, err = s.run(ctx, requestID, corrected, cat)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	if verr != nil {
		logging.WithFields(map[string]interface{}{
			"request_id": requestID,
			"kind":       string(verr.Kind),
		}).Info("chart request rejected")

		return nil, &Rejection{RequestID: requestID, Wire: verr.Wire()}, nil
	}

	if cacheKey != "" {
		s.responses.Set(cacheKey, resp)
	}

	log.WithField("duration", time.Since(start)).Info("chart request completed")

	return resp, nil, nil
}

// resolveRequest produces the untrusted chart request: passed through when
// structured, extracted by the LLM otherwise.
func (s *Service) resolveRequest(
	ctx context.Context,
	req Request,
	cat *schema.Catalog,
) (*query.ChartRequest, error) {
	if req.Structured != nil {
		return req.Structured, nil
	}

	if s.extractor == nil {
		return nil, errors.New(errors.ErrTypeConfig, "no extraction provider configured for natural-language requests")
	}

	return s.extractor.ExtractChartRequest(ctx, req.Message, cat.Describe())
}

// correctExtraction decides whether a rejected extraction deserves one
// guided retry and runs it. It returns nil when no retry applies or the
// retry itself fails; the original rejection then stands.
func (s *Service) correctExtraction(
	ctx context.Context,
	req Request,
	cat *schema.Catalog,
	chartReq *query.ChartRequest,
	verr *query.ValidationError,
) *query.ChartRequest {
	corrector, ok := s.extractor.(llm.Corrector)
	if !ok {
		return nil
	}

	if verr.Kind != query.KindNonNumericAggTarget && verr.Kind != query.KindMissingRequiredField {
		return nil
	}

	switch chart.NormalizeType(chartReq.ChartType) {
	case chart.Scatter, chart.Scatter3D, chart.Bubble:
	default:
		return nil
	}

	table, found := cat.Lookup(chartReq.TableName)
	if !found || len(table.NumericColumns) == 0 {
		return nil
	}

	guidance := fmt.Sprintf("%s Use only numeric columns for the axes. Numeric columns on %s: %s.",
		verr.Message, table.Name, strings.Join(table.NumericColumns, ", "))

	corrected, err := corrector.CorrectChartRequest(ctx, req.Message, cat.Describe(), guidance)
	if err != nil {
		logging.WithError(err).Debug("guided extraction retry failed")
		return nil
	}

	return corrected
}

func (s *Service) run(
	ctx context.Context,
	requestID string,
	chartReq *query.ChartRequest,
	cat *schema.Catalog,
) (*Response, *query.ValidationError, error) {
	normalized, err := s.validator.Validate(chartReq, cat)
	if err != nil {
		verr, ok := err.(*query.ValidationError)
		if !ok {
			return nil, nil, err
		}

		return nil, verr, nil
	}

	plan, err := s.builder.Build(normalized)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.store.ExecutePlan(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	// Second PII layer: strip denylisted fields from whatever came back.
	rows = s.filter.Strip(rows)

	spec := chart.Spec{
		Type:   normalized.ChartType,
		XField: normalized.XAxis,
		YField: normalized.YAxis,
		ZField: normalized.ZAxis,
	}

	if normalized.IsAggregated() {
		spec.YField = normalized.AggregateAlias()
	}

	suit := chart.AssessSuitability(
		spec.Type, rows,
		spec.XField, spec.YField, normalized.ZAxis, normalized.Size, normalized.Color,
	)
	spec.Type = suit.Recommended
	spec.Reason = suit.ReasonNotBest
	spec.Warnings = suit.Warnings

	rows, spec = chart.NormalizeForChart(rows, spec)

	return &Response{
		RequestID: requestID,
		Spec:      spec,
		Rows:      rows,
		SQL:       plan.SQL,
		Title:     chartReq.Title,
	}, nil, nil
}

// Recommend suggests a chart for rows that were fetched without a forced
// type, using the shape of the data plus the original message as a hint.
func (s *Service) Recommend(rows []results.Row, columns []string, hint string) chart.Spec {
	return chart.Recommend(rows, columns, hint)
}

// Catalog exposes the current schema snapshot, for the schema command.
func (s *Service) Catalog() *schema.Catalog {
	return s.refresher.Catalog()
}

// CacheStats reports response-cache statistics; zero stats when caching is
// disabled.
func (s *Service) CacheStats() cache.Stats {
	if s.responses == nil {
		return cache.Stats{}
	}

	return s.responses.GetStats()
}
