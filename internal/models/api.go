package models

// TurnRequest is one finished conversation turn posted by the assistant
// frontend. AssistantAnswer is preferred over UserMessage during lane
// extraction because the assistant restates the lane more precisely.
type TurnRequest struct {
	UserMessage     string `json:"user_message"`
	AssistantAnswer string `json:"assistant_answer"`
	ShipDate        string `json:"ship_date,omitempty"` // YYYY-MM-DD, defaults to today
	Wait            bool   `json:"wait,omitempty"`      // block until all four sources land
}

// TurnResponse reports what a turn triggered. Updates is populated only
// when the caller asked to wait.
type TurnResponse struct {
	TurnID     string         `json:"turn_id"`
	LaneInfo   LaneInfo       `json:"lane_info"`
	Usable     bool           `json:"usable"`
	Message    string         `json:"message,omitempty"`
	Dispatched []SourceKey    `json:"dispatched,omitempty"`
	Updates    []SourceUpdate `json:"updates,omitempty"`
}

// RefreshRequest re-runs a single source, optionally bypassing the quote
// cache. Lane overrides the remembered lane for this call only.
type RefreshRequest struct {
	Force    bool      `json:"force,omitempty"`
	ShipDate string    `json:"ship_date,omitempty"`
	Lane     *LaneInfo `json:"lane,omitempty"`
}

// RecommendationAPIRequest asks the gateway to produce a recommendation
// from whatever the store currently holds.
type RecommendationAPIRequest struct {
	Format string `json:"format,omitempty"` // "markdown" (default) or "html"
}

// RecommendationAPIResponse carries the engine's advice plus the sources
// that actually contributed data.
type RecommendationAPIResponse struct {
	Recommendation string      `json:"recommendation"`
	HTML           string      `json:"html,omitempty"`
	Model          string      `json:"model,omitempty"`
	SourcesUsed    []SourceKey `json:"sources_used"`
}

// MatrixRequest builds a rate matrix from caller-supplied quotes instead
// of the stored spot analysis.
type MatrixRequest struct {
	Quotes []CarrierQuotes `json:"quotes"`
}
