package models

import (
	"fmt"
	"strings"
)

// Measurement is a numeric quantity paired with the unit the user wrote it in
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // normalized lowercase, e.g. "lbs", "pallets"
}

// LaneInfo is the structured lane extracted from a single conversation turn.
// Every field is optional; a turn that mentions no lane at all yields the
// zero value. City names are normalized (title case, trailing "city" suffix
// stripped), states are two-letter uppercase codes.
type LaneInfo struct {
	SourceCity         string       `json:"source_city,omitempty"`
	SourceState        string       `json:"source_state,omitempty"`
	SourceCountry      string       `json:"source_country,omitempty"`
	DestinationCity    string       `json:"destination_city,omitempty"`
	DestinationState   string       `json:"destination_state,omitempty"`
	DestinationCountry string       `json:"destination_country,omitempty"`
	Weight             *Measurement `json:"weight,omitempty"`
	Volume             *Measurement `json:"volume,omitempty"`
	BestCarrier        string       `json:"best_carrier,omitempty"`
	WorstCarrier       string       `json:"worst_carrier,omitempty"`
}

// Usable reports whether the lane carries enough information to be worth
// fanning out: at least one endpoint city must be present.
func (l LaneInfo) Usable() bool {
	return l.SourceCity != "" || l.DestinationCity != ""
}

// Signature returns a stable lowercase key for this lane, used to build
// quote cache keys. Two turns describing the same lane produce the same
// signature regardless of casing or field order in the original text.
func (l LaneInfo) Signature() string {
	parts := []string{
		l.SourceCity, l.SourceState,
		l.DestinationCity, l.DestinationState,
	}
	if l.Weight != nil {
		parts = append(parts, fmt.Sprintf("%g%s", l.Weight.Value, l.Weight.Unit))
	}
	if l.Volume != nil {
		parts = append(parts, fmt.Sprintf("%g%s", l.Volume.Value, l.Volume.Unit))
	}
	return strings.ToLower(strings.Join(parts, "|"))
}

// Describe renders the lane as a short human-readable string for logs,
// e.g. "Los Angeles, CA -> Chicago, IL".
func (l LaneInfo) Describe() string {
	format := func(city, state string) string {
		if city == "" {
			return "?"
		}
		if state == "" {
			return city
		}
		return city + ", " + state
	}
	return format(l.SourceCity, l.SourceState) + " -> " + format(l.DestinationCity, l.DestinationState)
}
