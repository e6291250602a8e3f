package models

import "time"

// SourceKey identifies one of the four lane intelligence sources. The set
// is closed: every store slot, cache key and metric label uses one of these.
type SourceKey string

const (
	SourceRateInquiry    SourceKey = "rateInquiry"
	SourceSpotAnalysis   SourceKey = "spotAnalysis"
	SourceHistoricalData SourceKey = "historicalData"
	SourceOrderRelease   SourceKey = "orderRelease"
)

// AllSourceKeys lists every source key in canonical order. Fan-out,
// snapshots and the aggregated recommendation payload all iterate this
// slice so output ordering stays stable.
var AllSourceKeys = []SourceKey{
	SourceRateInquiry,
	SourceSpotAnalysis,
	SourceHistoricalData,
	SourceOrderRelease,
}

// Valid reports whether k is one of the four known source keys.
func (k SourceKey) Valid() bool {
	switch k {
	case SourceRateInquiry, SourceSpotAnalysis, SourceHistoricalData, SourceOrderRelease:
		return true
	}
	return false
}

// ParseSourceKey converts a path or query parameter into a SourceKey.
func ParseSourceKey(s string) (SourceKey, error) {
	k := SourceKey(s)
	if !k.Valid() {
		return "", ErrInvalidSourceKey
	}
	return k, nil
}

// Label returns the human-readable name used in user-facing messages.
func (k SourceKey) Label() string {
	switch k {
	case SourceRateInquiry:
		return "rate inquiry"
	case SourceSpotAnalysis:
		return "spot analysis"
	case SourceHistoricalData:
		return "historical data"
	case SourceOrderRelease:
		return "order release"
	}
	return string(k)
}

// SourceEntry is one aggregation slot. HasData is false until a fetch for
// this source lands successfully; while false the payload is always nil.
type SourceEntry struct {
	HasData   bool        `json:"has_data"`
	Payload   interface{} `json:"payload"`
	UpdatedAt time.Time   `json:"updated_at,omitempty"`
}

// SourceStatus is the user-facing state of a single source fetch.
type SourceStatus string

const (
	StatusOK     SourceStatus = "ok"
	StatusCached SourceStatus = "cached"
	StatusNoLane SourceStatus = "no_lane"
	StatusError  SourceStatus = "error"
)

// SourceUpdate is pushed to websocket clients (and returned from refresh
// calls) every time a source slot changes. Message carries the user-facing
// text for no-lane and error states.
type SourceUpdate struct {
	TurnID  string       `json:"turn_id,omitempty"`
	Key     SourceKey    `json:"key"`
	Status  SourceStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Entry   SourceEntry  `json:"entry"`
}
