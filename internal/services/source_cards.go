package services

import (
	"context"
	"time"

	"github.com/vedsathwik275/envision-sub000/internal/models"
	"github.com/vedsathwik275/envision-sub000/internal/upstream"
)

// SourceCard is one lane data source: it builds the engine request for
// a lane, calls the engine and normalizes the response into the typed
// payload stored in the aggregation slot. Cards never touch the store
// or the cache; the fan-out service owns that choreography. NewPayload
// returns an empty payload of the card's type for decoding cache hits.
type SourceCard interface {
	Key() models.SourceKey
	NewPayload() interface{}
	Fetch(ctx context.Context, lane models.LaneInfo, shipDate string) (interface{}, error)
}

// RateInquiryCard fetches contracted carrier rates from the RIQ engine.
type RateInquiryCard struct {
	client   *upstream.Client
	registry *SourceRegistry
}

func NewRateInquiryCard(client *upstream.Client, registry *SourceRegistry) *RateInquiryCard {
	return &RateInquiryCard{client: client, registry: registry}
}

func (c *RateInquiryCard) Key() models.SourceKey { return models.SourceRateInquiry }

func (c *RateInquiryCard) NewPayload() interface{} { return &models.RateInquiryPayload{} }

func (c *RateInquiryCard) Fetch(ctx context.Context, lane models.LaneInfo, _ string) (interface{}, error) {
	endpoint, err := c.registry.Endpoint(c.Key())
	if err != nil {
		return nil, err
	}

	reqBody := models.RateInquiryRequest{
		Origin: models.WireLocation{
			City:    lane.SourceCity,
			State:   lane.SourceState,
			Country: lane.SourceCountry,
		},
		Destination: models.WireLocation{
			City:    lane.DestinationCity,
			State:   lane.DestinationState,
			Country: lane.DestinationCountry,
		},
		Weight: lane.Weight,
		Volume: lane.Volume,
	}

	var resp struct {
		Rates []models.RateOption `json:"rates"`
	}
	callCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout())
	defer cancel()
	if err := c.client.PostJSON(callCtx, string(c.Key()), endpoint.URL(), reqBody, &resp); err != nil {
		return nil, err
	}

	return &models.RateInquiryPayload{Options: resp.Rates}, nil
}

// SpotAnalysisCard fetches the seven-day spot cost window around the
// shipment date. Without an explicit date the window centers on today.
type SpotAnalysisCard struct {
	client   *upstream.Client
	registry *SourceRegistry
}

func NewSpotAnalysisCard(client *upstream.Client, registry *SourceRegistry) *SpotAnalysisCard {
	return &SpotAnalysisCard{client: client, registry: registry}
}

func (c *SpotAnalysisCard) Key() models.SourceKey { return models.SourceSpotAnalysis }

func (c *SpotAnalysisCard) NewPayload() interface{} { return &models.SpotAnalysisPayload{} }

func (c *SpotAnalysisCard) Fetch(ctx context.Context, lane models.LaneInfo, shipDate string) (interface{}, error) {
	endpoint, err := c.registry.Endpoint(c.Key())
	if err != nil {
		return nil, err
	}

	date := shipDate
	if date == "" {
		// Local clock on purpose: "today" means the user's today.
		date = time.Now().Format("2006-01-02")
	}
	reqBody := models.SpotAnalysisRequest{
		OriginCity:      lane.SourceCity,
		DestinationCity: lane.DestinationCity,
		ShipmentDate:    date,
	}

	var payload models.SpotAnalysisPayload
	callCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout())
	defer cancel()
	if err := c.client.PostJSON(callCtx, string(c.Key()), endpoint.URL(), reqBody, &payload); err != nil {
		return nil, err
	}

	// Some engine builds omit the echo fields.
	if payload.OriginCity == "" {
		payload.OriginCity = lane.SourceCity
	}
	if payload.DestinationCity == "" {
		payload.DestinationCity = lane.DestinationCity
	}
	if payload.ShipmentDate == "" {
		payload.ShipmentDate = date
	}
	return &payload, nil
}

// HistoricalDataCard fetches past shipments over a trailing window and
// computes the summary statistics locally; the engine only returns the
// raw records.
type HistoricalDataCard struct {
	client      *upstream.Client
	registry    *SourceRegistry
	historyDays int
}

func NewHistoricalDataCard(client *upstream.Client, registry *SourceRegistry, historyDays int) *HistoricalDataCard {
	if historyDays <= 0 {
		historyDays = 30
	}
	return &HistoricalDataCard{client: client, registry: registry, historyDays: historyDays}
}

func (c *HistoricalDataCard) Key() models.SourceKey { return models.SourceHistoricalData }

func (c *HistoricalDataCard) NewPayload() interface{} { return &models.HistoricalDataPayload{} }

func (c *HistoricalDataCard) Fetch(ctx context.Context, lane models.LaneInfo, _ string) (interface{}, error) {
	endpoint, err := c.registry.Endpoint(c.Key())
	if err != nil {
		return nil, err
	}

	reqBody := models.HistoricalDataRequest{
		OriginCity:      lane.SourceCity,
		DestinationCity: lane.DestinationCity,
		DateRangeDays:   c.historyDays,
	}

	var resp struct {
		Records []models.HistoricalRecord `json:"records"`
	}
	callCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout())
	defer cancel()
	if err := c.client.PostJSON(callCtx, string(c.Key()), endpoint.URL(), reqBody, &resp); err != nil {
		return nil, err
	}

	payload := &models.HistoricalDataPayload{
		OriginCity:      lane.SourceCity,
		DestinationCity: lane.DestinationCity,
		RecordCount:     len(resp.Records),
		Records:         resp.Records,
	}
	for i, record := range resp.Records {
		payload.AverageCost += record.Cost
		if i == 0 || record.Cost < payload.MinCost {
			payload.MinCost = record.Cost
		}
		if i == 0 || record.Cost > payload.MaxCost {
			payload.MaxCost = record.Cost
		}
	}
	if payload.RecordCount > 0 {
		payload.AverageCost /= float64(payload.RecordCount)
	}
	return payload, nil
}

// OrderReleaseCard fetches unplanned orders matching the lane's
// endpoints.
type OrderReleaseCard struct {
	client   *upstream.Client
	registry *SourceRegistry
}

func NewOrderReleaseCard(client *upstream.Client, registry *SourceRegistry) *OrderReleaseCard {
	return &OrderReleaseCard{client: client, registry: registry}
}

func (c *OrderReleaseCard) Key() models.SourceKey { return models.SourceOrderRelease }

func (c *OrderReleaseCard) NewPayload() interface{} { return &models.OrderReleasePayload{} }

func (c *OrderReleaseCard) Fetch(ctx context.Context, lane models.LaneInfo, _ string) (interface{}, error) {
	endpoint, err := c.registry.Endpoint(c.Key())
	if err != nil {
		return nil, err
	}

	reqBody := models.OrderReleaseRequest{
		OriginCity:      lane.SourceCity,
		DestinationCity: lane.DestinationCity,
	}

	var resp struct {
		Orders []models.OrderRelease `json:"orders"`
	}
	callCtx, cancel := context.WithTimeout(ctx, endpoint.Timeout())
	defer cancel()
	if err := c.client.PostJSON(callCtx, string(c.Key()), endpoint.URL(), reqBody, &resp); err != nil {
		return nil, err
	}

	return &models.OrderReleasePayload{Orders: resp.Orders}, nil
}
