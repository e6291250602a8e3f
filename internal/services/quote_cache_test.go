package services

import (
	"context"
	"testing"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

func quoteTestLane() models.LaneInfo {
	return models.LaneInfo{
		SourceCity:      "Los Angeles",
		SourceState:     "CA",
		DestinationCity: "Chicago",
		DestinationState: "IL",
	}
}

func TestQuoteCache_SetGetRoundtrip(t *testing.T) {
	cache := NewQuoteCacheService(time.Minute, time.Minute, nil)
	ctx := context.Background()

	key := cache.Key(models.SourceRateInquiry, quoteTestLane(), "")
	cache.Set(ctx, key, &models.RateInquiryPayload{
		Options: []models.RateOption{{Carrier: "Alpha", TotalRate: 1200}},
	})

	var out models.RateInquiryPayload
	if !cache.Get(ctx, key, &out) {
		t.Fatal("Expected cache hit")
	}
	if len(out.Options) != 1 || out.Options[0].Carrier != "Alpha" {
		t.Errorf("Expected cached payload, got %+v", out)
	}
}

func TestQuoteCache_MissOnUnknownKey(t *testing.T) {
	cache := NewQuoteCacheService(time.Minute, time.Minute, nil)

	var out models.RateInquiryPayload
	if cache.Get(context.Background(), "quote:nope", &out) {
		t.Error("Expected miss for unknown key")
	}
}

func TestQuoteCache_KeyIncludesShipDateForSpotOnly(t *testing.T) {
	cache := NewQuoteCacheService(time.Minute, time.Minute, nil)
	lane := quoteTestLane()

	spotA := cache.Key(models.SourceSpotAnalysis, lane, "2025-03-01")
	spotB := cache.Key(models.SourceSpotAnalysis, lane, "2025-03-02")
	if spotA == spotB {
		t.Error("Expected different spot keys for different ship dates")
	}

	riqA := cache.Key(models.SourceRateInquiry, lane, "2025-03-01")
	riqB := cache.Key(models.SourceRateInquiry, lane, "2025-03-02")
	if riqA != riqB {
		t.Error("Expected rate inquiry key independent of ship date")
	}
}

func TestQuoteCache_KeysSeparateSources(t *testing.T) {
	cache := NewQuoteCacheService(time.Minute, time.Minute, nil)
	lane := quoteTestLane()

	if cache.Key(models.SourceRateInquiry, lane, "") == cache.Key(models.SourceOrderRelease, lane, "") {
		t.Error("Expected distinct keys per source")
	}
}

func TestQuoteCache_FlushDropsEverything(t *testing.T) {
	cache := NewQuoteCacheService(time.Minute, time.Minute, nil)
	ctx := context.Background()

	key := cache.Key(models.SourceOrderRelease, quoteTestLane(), "")
	cache.Set(ctx, key, &models.OrderReleasePayload{Orders: []models.OrderRelease{{OrderID: "o1"}}})
	if cache.ItemCount() != 1 {
		t.Fatalf("Expected 1 cached item, got %d", cache.ItemCount())
	}

	cache.Flush(ctx)

	var out models.OrderReleasePayload
	if cache.Get(ctx, key, &out) {
		t.Error("Expected miss after flush")
	}
	if cache.ItemCount() != 0 {
		t.Errorf("Expected empty cache after flush, got %d items", cache.ItemCount())
	}
}
