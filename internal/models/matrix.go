package models

// SpotQuote is one carrier's cost for one ship date, reshaped from the
// spot engine's nested costDetails form.
type SpotQuote struct {
	Carrier   string  `json:"carrier"`
	ShipDate  string  `json:"ship_date"` // YYYY-MM-DD
	TotalCost float64 `json:"total_cost"`
}

// CarrierQuotes is the rate matrix builder's input: one carrier and its
// dated quotes, in whatever order the source produced them.
type CarrierQuotes struct {
	Carrier string      `json:"carrier"`
	Quotes  []SpotQuote `json:"quotes"`
}

// CarrierRow is one matrix row. Cells maps ship date to cost; a date
// missing from the map is an absent cell, never a zero. Average covers
// present cells only and is nil when the carrier quoted nothing.
type CarrierRow struct {
	Carrier string             `json:"carrier"`
	Cells   map[string]float64 `json:"cells"`
	Average *float64           `json:"average"`
}

// RateMatrix is the carrier-by-date cost table. Dates are unique and
// sorted ascending. The market statistics cover every present cell and
// are nil when the matrix is empty. Values keep full precision; rounding
// is a rendering concern.
type RateMatrix struct {
	Dates         []string     `json:"dates"`
	Rows          []CarrierRow `json:"rows"`
	MarketMin     *float64     `json:"market_min"`
	MarketMax     *float64     `json:"market_max"`
	MarketAverage *float64     `json:"market_average"`
}
