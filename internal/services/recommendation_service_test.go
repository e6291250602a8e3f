package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/config"
	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/upstream"
)

func registryWithRecommendation(base string) *SourceRegistry {
	cfg := config.DefaultSources()
	cfg.Recommendation = config.SourceEndpoint{
		BaseURL:        base,
		TimeoutSeconds: 5,
		RatePerSecond:  100,
		Burst:          100,
	}
	return &SourceRegistry{cfg: cfg}
}

func populateSlot(t *testing.T, store *AggregationStore, key models.SourceKey, payload interface{}) {
	t.Helper()
	gen, err := store.NextGeneration(key)
	if err != nil {
		t.Fatalf("NextGeneration failed: %v", err)
	}
	entry := models.SourceEntry{HasData: true, Payload: payload, UpdatedAt: time.Now().UTC()}
	if _, err := store.Set(key, entry, gen); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
}

func TestRecommendationService_Request_EmptyStoreRejected(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(models.RecommendationResult{Recommendation: "never"})
	}))
	t.Cleanup(srv.Close)

	store := NewAggregationStore()
	svc := NewRecommendationService(store, registryWithRecommendation(srv.URL), upstream.NewClient(5*time.Second), nil)

	_, _, err := svc.Request(context.Background(), testLane())
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("Expected no engine call on an empty store, got %d", got)
	}
}

func TestRecommendationService_Request_SingleSourceSuffices(t *testing.T) {
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		gotBody.Store(body)
		json.NewEncoder(w).Encode(models.RecommendationResult{
			Recommendation: "## Recommendation\n\nBook the spot market.",
			Model:          "lane-analyst-1",
		})
	}))
	t.Cleanup(srv.Close)

	store := NewAggregationStore()
	populateSlot(t, store, models.SourceSpotAnalysis, &models.SpotAnalysisPayload{
		OriginCity:      "Austin",
		DestinationCity: "Dallas",
		ShipmentDate:    "2026-03-02",
	})
	svc := NewRecommendationService(store, registryWithRecommendation(srv.URL), upstream.NewClient(5*time.Second), nil)

	result, used, err := svc.Request(context.Background(), testLane())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if result.Recommendation == "" || result.Model != "lane-analyst-1" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if len(used) != 1 || used[0] != models.SourceSpotAnalysis {
		t.Errorf("Expected only spotAnalysis to be listed as used, got %v", used)
	}

	body, ok := gotBody.Load().(map[string]interface{})
	if !ok {
		t.Fatal("Engine never received a body")
	}
	aggregated, ok := body["aggregatedData"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected aggregatedData object, got %T", body["aggregatedData"])
	}
	for _, key := range []string{"rateInquiry", "spotAnalysis", "historicalData", "orderRelease"} {
		if _, present := aggregated[key]; !present {
			t.Errorf("Expected %s key in aggregated data even when empty", key)
		}
	}
	if aggregated["rateInquiry"] != nil {
		t.Errorf("Expected explicit null for the missing rateInquiry slot, got %v", aggregated["rateInquiry"])
	}
	if aggregated["spotAnalysis"] == nil {
		t.Error("Expected spotAnalysis payload to be forwarded")
	}
}

func TestRecommendationService_Request_EngineFailureSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	store := NewAggregationStore()
	populateSlot(t, store, models.SourceRateInquiry, &models.RateInquiryPayload{})
	svc := NewRecommendationService(store, registryWithRecommendation(srv.URL), upstream.NewClient(5*time.Second), nil)

	_, _, err := svc.Request(context.Background(), testLane())
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected exactly one attempt, got %d", got)
	}
}

func TestRecommendationService_Request_DisabledEngine(t *testing.T) {
	cfg := config.DefaultSources()
	disabled := false
	cfg.Recommendation = config.SourceEndpoint{
		BaseURL:        "http://localhost:9",
		TimeoutSeconds: 5,
		RatePerSecond:  100,
		Burst:          100,
		Enabled:        &disabled,
	}

	store := NewAggregationStore()
	populateSlot(t, store, models.SourceRateInquiry, &models.RateInquiryPayload{})
	svc := NewRecommendationService(store, &SourceRegistry{cfg: cfg}, upstream.NewClient(time.Second), nil)

	_, _, err := svc.Request(context.Background(), testLane())
	if !errors.Is(err, models.ErrUpstream) {
		t.Errorf("Expected ErrUpstream for disabled engine, got %v", err)
	}
}

func TestRecommendationService_RenderHTML(t *testing.T) {
	svc := NewRecommendationService(NewAggregationStore(), registryWithRecommendation("http://localhost:9"), upstream.NewClient(time.Second), nil)

	html, err := svc.RenderHTML("## Lane Verdict\n\nUse **Dayton Freight** for this lane.\n\n- cheapest contracted rate\n- 2 day transit")
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "<h2") {
		t.Errorf("Expected a rendered heading, got %q", html)
	}
	if !strings.Contains(html, "<strong>Dayton Freight</strong>") {
		t.Errorf("Expected bold carrier name, got %q", html)
	}
	if !strings.Contains(html, "<li>") {
		t.Errorf("Expected a rendered list, got %q", html)
	}
}

func TestBuildAggregatedData_IgnoresMistypedPayloads(t *testing.T) {
	snapshot := map[models.SourceKey]models.SourceEntry{
		models.SourceRateInquiry: {HasData: true, Payload: "not a payload"},
		models.SourceOrderRelease: {HasData: true, Payload: &models.OrderReleasePayload{
			Orders: []models.OrderRelease{{OrderID: "ORD-9"}},
		}},
	}

	aggregated := buildAggregatedData(snapshot)
	if aggregated.RateInquiry != nil {
		t.Error("Expected mistyped payload to be dropped")
	}
	if aggregated.OrderRelease == nil || len(aggregated.OrderRelease.Orders) != 1 {
		t.Errorf("Expected order payload to pass through, got %+v", aggregated.OrderRelease)
	}
}
