package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/upstream"
)

// RecommendationService turns the aggregated slots into one request
// against the recommendation engine. It never retries: the engine call
// is expensive and the user is watching, so a failure surfaces
// immediately and the caller decides whether to ask again.
type RecommendationService struct {
	store    *AggregationStore
	registry *SourceRegistry
	client   *upstream.Client
	metrics  *Metrics // nil disables metrics
	markdown goldmark.Markdown
}

// NewRecommendationService creates the coordinator.
func NewRecommendationService(store *AggregationStore, registry *SourceRegistry, client *upstream.Client, metrics *Metrics) *RecommendationService {
	return &RecommendationService{
		store:    store,
		registry: registry,
		client:   client,
		metrics:  metrics,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Request gates on store readiness, assembles the closed aggregated
// record and makes exactly one attempt against the engine. The second
// return value lists the sources that contributed data, in canonical
// order.
func (s *RecommendationService) Request(ctx context.Context, lane models.LaneInfo) (*models.RecommendationResult, []models.SourceKey, error) {
	if !s.store.IsReady() {
		s.record("insufficient_data")
		return nil, nil, models.ErrInsufficientData
	}

	snapshot := s.store.Snapshot()
	aggregated := buildAggregatedData(snapshot)
	used := make([]models.SourceKey, 0, len(models.AllSourceKeys))
	for _, key := range models.AllSourceKeys {
		if snapshot[key].HasData {
			used = append(used, key)
		}
	}

	endpoint := s.registry.Recommendation()
	if !endpoint.IsEnabled() {
		s.record("error")
		return nil, nil, fmt.Errorf("%w: recommendation engine is disabled", models.ErrUpstream)
	}

	reqBody := models.RecommendationRequest{
		AggregatedData: aggregated,
		LaneInfo:       lane,
	}
	var result models.RecommendationResult
	callCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout())
	defer cancel()
	if err := s.client.PostJSON(callCtx, "recommendation", endpoint.URL(), reqBody, &result); err != nil {
		s.record("error")
		return nil, nil, err
	}

	s.record("ok")
	return &result, used, nil
}

// RenderHTML converts the engine's markdown recommendation to HTML for
// clients that embed it directly.
func (s *RecommendationService) RenderHTML(recommendation string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(recommendation), &buf); err != nil {
		return "", fmt.Errorf("failed to render recommendation: %w", err)
	}
	return buf.String(), nil
}

// buildAggregatedData maps the snapshot onto the closed wire record.
// Slots without data become explicit JSON nulls; a payload of an
// unexpected dynamic type is treated as missing rather than forwarded
// blind.
func buildAggregatedData(snapshot map[models.SourceKey]models.SourceEntry) models.AggregatedData {
	var aggregated models.AggregatedData
	for key, entry := range snapshot {
		if !entry.HasData {
			continue
		}
		switch key {
		case models.SourceRateInquiry:
			if p, ok := entry.Payload.(*models.RateInquiryPayload); ok {
				aggregated.RateInquiry = p
			}
		case models.SourceSpotAnalysis:
			if p, ok := entry.Payload.(*models.SpotAnalysisPayload); ok {
				aggregated.SpotAnalysis = p
			}
		case models.SourceHistoricalData:
			if p, ok := entry.Payload.(*models.HistoricalDataPayload); ok {
				aggregated.HistoricalData = p
			}
		case models.SourceOrderRelease:
			if p, ok := entry.Payload.(*models.OrderReleasePayload); ok {
				aggregated.OrderRelease = p
			}
		}
	}
	return aggregated
}

func (s *RecommendationService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRecommendation(outcome)
	}
}
