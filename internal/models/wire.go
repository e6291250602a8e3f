package models

// Wire types for the four data source engines and the recommendation
// engine. JSON field names follow the collaborator schemas (camelCase),
// not the gateway's own API conventions.

// WireLocation is a structured endpoint sent to the rate inquiry engine.
type WireLocation struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// RateInquiryRequest asks the RIQ engine for contracted carrier rates on
// a lane.
type RateInquiryRequest struct {
	Origin      WireLocation `json:"origin"`
	Destination WireLocation `json:"destination"`
	Weight      *Measurement `json:"weight,omitempty"`
	Volume      *Measurement `json:"volume,omitempty"`
}

// RateOption is one carrier's contracted rate for the requested lane.
type RateOption struct {
	Carrier      string  `json:"carrier"`
	ServiceLevel string  `json:"serviceLevel,omitempty"`
	TotalRate    float64 `json:"totalRate"`
	Currency     string  `json:"currency,omitempty"`
	TransitDays  int     `json:"transitDays,omitempty"`
}

// RateInquiryPayload is the normalized rate inquiry result stored in the
// aggregation slot.
type RateInquiryPayload struct {
	Options []RateOption `json:"options"`
}

// SpotAnalysisRequest asks the spot engine for a seven-day cost window
// around the shipment date.
type SpotAnalysisRequest struct {
	OriginCity      string `json:"originCity"`
	DestinationCity string `json:"destinationCity"`
	ShipmentDate    string `json:"shipmentDate"` // YYYY-MM-DD
}

// SpotCostDetail is a single dated cost point for one carrier.
type SpotCostDetail struct {
	ShipDate      string  `json:"shipDate"` // YYYY-MM-DD
	TotalSpotCost float64 `json:"totalSpotCost"`
}

// SpotCarrierCosts groups the spot engine's cost points by carrier.
type SpotCarrierCosts struct {
	Carrier     string           `json:"carrier"`
	CostDetails []SpotCostDetail `json:"costDetails"`
}

// SpotAnalysisPayload is the normalized spot result stored in the
// aggregation slot and fed to the rate matrix builder.
type SpotAnalysisPayload struct {
	OriginCity      string             `json:"originCity"`
	DestinationCity string             `json:"destinationCity"`
	ShipmentDate    string             `json:"shipmentDate"`
	SpotCosts       []SpotCarrierCosts `json:"spotCosts"`
}

// HistoricalDataRequest asks the history engine for past shipments on a
// lane over a trailing window.
type HistoricalDataRequest struct {
	OriginCity      string `json:"originCity"`
	DestinationCity string `json:"destinationCity"`
	DateRangeDays   int    `json:"dateRangeDays"`
}

// HistoricalRecord is one past shipment on the lane.
type HistoricalRecord struct {
	ShipDate string  `json:"shipDate"`
	Carrier  string  `json:"carrier"`
	Cost     float64 `json:"cost"`
	Mode     string  `json:"mode,omitempty"`
}

// HistoricalDataPayload is the normalized history result: summary
// statistics over the window plus the raw records.
type HistoricalDataPayload struct {
	OriginCity      string             `json:"originCity"`
	DestinationCity string             `json:"destinationCity"`
	RecordCount     int                `json:"recordCount"`
	AverageCost     float64            `json:"averageCost"`
	MinCost         float64            `json:"minCost"`
	MaxCost         float64            `json:"maxCost"`
	Records         []HistoricalRecord `json:"records"`
}

// OrderReleaseRequest asks the order engine for unplanned orders matching
// the lane's endpoints.
type OrderReleaseRequest struct {
	OriginCity      string `json:"originCity"`
	DestinationCity string `json:"destinationCity"`
}

// OrderRelease is one unplanned order awaiting carrier assignment.
type OrderRelease struct {
	OrderID         string  `json:"orderId"`
	OriginCity      string  `json:"originCity"`
	DestinationCity string  `json:"destinationCity"`
	PickupDate      string  `json:"pickupDate,omitempty"`
	WeightLbs       float64 `json:"weightLbs,omitempty"`
	Status          string  `json:"status,omitempty"`
}

// OrderReleasePayload is the normalized order release result stored in
// the aggregation slot.
type OrderReleasePayload struct {
	Orders []OrderRelease `json:"orders"`
}

// AggregatedData is the closed record of source payloads sent to the
// recommendation engine. A nil field means that source has produced no
// data; the JSON null is sent explicitly so the engine sees every key.
type AggregatedData struct {
	RateInquiry    *RateInquiryPayload    `json:"rateInquiry"`
	SpotAnalysis   *SpotAnalysisPayload   `json:"spotAnalysis"`
	HistoricalData *HistoricalDataPayload `json:"historicalData"`
	OrderRelease   *OrderReleasePayload   `json:"orderRelease"`
}

// RecommendationRequest is the single-shot request to the recommendation
// engine.
type RecommendationRequest struct {
	AggregatedData AggregatedData `json:"aggregatedData"`
	LaneInfo       LaneInfo       `json:"laneInfo"`
}

// RecommendationResult is the engine's answer. Recommendation is
// markdown-formatted free text.
type RecommendationResult struct {
	Recommendation string `json:"recommendation"`
	Model          string `json:"model,omitempty"`
	GeneratedAt    string `json:"generatedAt,omitempty"`
}
