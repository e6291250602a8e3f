package laneparser

import (
	"testing"
)

func TestParse_FromToInAnswer(t *testing.T) {
	lane := Parse("what are the rates?", "Best rate from Los Angeles to Chicago is $1200")

	if lane.SourceCity != "Los Angeles" {
		t.Errorf("Expected source city 'Los Angeles', got %q", lane.SourceCity)
	}
	if lane.DestinationCity != "Chicago" {
		t.Errorf("Expected destination city 'Chicago', got %q", lane.DestinationCity)
	}
	if !lane.Usable() {
		t.Error("Expected lane to be usable")
	}
	if lane.BestCarrier != "" {
		t.Errorf("Expected no carrier from 'best rate' phrasing, got %q", lane.BestCarrier)
	}
}

func TestParse_NoLaneInformation(t *testing.T) {
	lane := Parse("hello, how are you?", "I'm doing great, thanks for asking!")

	if lane.Usable() {
		t.Errorf("Expected unusable lane, got %+v", lane)
	}
	if lane.SourceCity != "" || lane.DestinationCity != "" {
		t.Errorf("Expected empty cities, got %q / %q", lane.SourceCity, lane.DestinationCity)
	}
}

func TestParse_EmptyInputs(t *testing.T) {
	lane := Parse("", "")
	if lane.Usable() {
		t.Errorf("Expected zero lane for empty inputs, got %+v", lane)
	}
}

func TestParse_CityStatePairs(t *testing.T) {
	lane := Parse("", "Shipping from Dallas, TX to Atlanta, GA is cheapest on Tuesday")

	if lane.SourceCity != "Dallas" || lane.SourceState != "TX" {
		t.Errorf("Expected Dallas/TX, got %q/%q", lane.SourceCity, lane.SourceState)
	}
	if lane.DestinationCity != "Atlanta" || lane.DestinationState != "GA" {
		t.Errorf("Expected Atlanta/GA, got %q/%q", lane.DestinationCity, lane.DestinationState)
	}
	if lane.SourceCountry != "US" {
		t.Errorf("Expected default country US, got %q", lane.SourceCountry)
	}
}

func TestParse_LowercaseStateNormalized(t *testing.T) {
	lane := Parse("rates from memphis, tn to tampa, fl please", "")

	if lane.SourceCity != "Memphis" || lane.SourceState != "TN" {
		t.Errorf("Expected Memphis/TN, got %q/%q", lane.SourceCity, lane.SourceState)
	}
	if lane.DestinationCity != "Tampa" || lane.DestinationState != "FL" {
		t.Errorf("Expected Tampa/FL, got %q/%q", lane.DestinationCity, lane.DestinationState)
	}
}

func TestParse_AnswerTakesPrecedence(t *testing.T) {
	lane := Parse(
		"how much from Denver to Phoenix?",
		"The lane from Denver, CO to Phoenix, AZ averages $950",
	)

	// Both texts name the lane; the answer's richer version wins.
	if lane.SourceState != "CO" || lane.DestinationState != "AZ" {
		t.Errorf("Expected states from answer, got %q/%q", lane.SourceState, lane.DestinationState)
	}
}

func TestParse_FallsBackToUserMessage(t *testing.T) {
	lane := Parse("quote me from Seattle to Portland", "Here are the carrier options I found.")

	if lane.SourceCity != "Seattle" || lane.DestinationCity != "Portland" {
		t.Errorf("Expected Seattle/Portland from user message, got %q/%q", lane.SourceCity, lane.DestinationCity)
	}
}

func TestParse_BareCityPair(t *testing.T) {
	lane := Parse("", "Los Angeles to Chicago looks tight on capacity this week")

	if lane.SourceCity != "Los Angeles" {
		t.Errorf("Expected 'Los Angeles', got %q", lane.SourceCity)
	}
	if lane.DestinationCity != "Chicago" {
		t.Errorf("Expected 'Chicago', got %q", lane.DestinationCity)
	}
}

func TestParse_ProseDoesNotProduceCities(t *testing.T) {
	lane := Parse("I want to go over the numbers again", "sure, let me pull them up")

	if lane.Usable() {
		t.Errorf("Expected no lane from plain prose, got %+v", lane)
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "chicago", "Chicago"},
		{"two words", "los angeles", "Los Angeles"},
		{"trailing city suffix", "chicago city", "Chicago"},
		{"uppercase input", "KANSAS", "Kansas"},
		{"internal of stays lower", "isle of palms", "Isle of Palms"},
		{"internal the stays lower", "lake in the hills", "Lake In the Hills"},
		{"first word always capitalized", "the dalles", "The Dalles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeCity(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParse_AbbreviatedCityName(t *testing.T) {
	lane := Parse("", "Cheapest option from St. Louis to Chicago is $800")

	if lane.SourceCity != "St. Louis" {
		t.Errorf("Expected 'St. Louis', got %q", lane.SourceCity)
	}
	if lane.DestinationCity != "Chicago" {
		t.Errorf("Expected 'Chicago', got %q", lane.DestinationCity)
	}
}

func TestParse_Weight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		value float64
		unit  string
	}{
		{"pounds with comma", "quote 1,500 lbs from Dallas to Austin", 1500, "lbs"},
		{"pounds spelled out", "it weighs 500 pounds total", 500, "lbs"},
		{"kilograms", "around 750 kg of freight", 750, "kg"},
		{"no space before unit", "a 2000lbs shipment", 2000, "lbs"},
		{"decimal tons", "roughly 2.5 tons", 2.5, "tons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lane := Parse(tt.text, "")
			if lane.Weight == nil {
				t.Fatalf("Expected weight from %q, got nil", tt.text)
			}
			if lane.Weight.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, lane.Weight.Value)
			}
			if lane.Weight.Unit != tt.unit {
				t.Errorf("Expected unit %q, got %q", tt.unit, lane.Weight.Unit)
			}
		})
	}
}

func TestParse_Volume(t *testing.T) {
	lane := Parse("we have 6 pallets going from Reno to Boise", "")

	if lane.Volume == nil {
		t.Fatal("Expected volume, got nil")
	}
	if lane.Volume.Value != 6 || lane.Volume.Unit != "pallets" {
		t.Errorf("Expected 6 pallets, got %v %s", lane.Volume.Value, lane.Volume.Unit)
	}
}

func TestParse_VolumeCubicMeters(t *testing.T) {
	lane := Parse("about 12 cubic meters of freight", "")

	if lane.Volume == nil {
		t.Fatal("Expected volume, got nil")
	}
	if lane.Volume.Value != 12 || lane.Volume.Unit != "cbm" {
		t.Errorf("Expected 12 cbm, got %v %s", lane.Volume.Value, lane.Volume.Unit)
	}
}

func TestParse_NoMeasurementFromPlainNumbers(t *testing.T) {
	lane := Parse("", "the rate is $1,200 for that lane")

	if lane.Weight != nil {
		t.Errorf("Expected no weight from a dollar amount, got %+v", lane.Weight)
	}
	if lane.Volume != nil {
		t.Errorf("Expected no volume from a dollar amount, got %+v", lane.Volume)
	}
}

func TestParse_BestCarrier(t *testing.T) {
	lane := Parse("", "The best carrier is Dayton Freight with a rate of $1,100")

	if lane.BestCarrier != "Dayton Freight" {
		t.Errorf("Expected 'Dayton Freight', got %q", lane.BestCarrier)
	}
}

func TestParse_WorstCarrier(t *testing.T) {
	lane := Parse("", "I would avoid carrier XPO Logistics on this lane, it runs 20% above market")

	if lane.WorstCarrier != "XPO Logistics" {
		t.Errorf("Expected 'XPO Logistics', got %q", lane.WorstCarrier)
	}
}

func TestParse_BothCarriers(t *testing.T) {
	lane := Parse("", "Recommended carrier: ABC Transport. Worst carrier: Overpriced Lines.")

	if lane.BestCarrier != "ABC Transport" {
		t.Errorf("Expected 'ABC Transport', got %q", lane.BestCarrier)
	}
	if lane.WorstCarrier != "Overpriced Lines" {
		t.Errorf("Expected 'Overpriced Lines', got %q", lane.WorstCarrier)
	}
}

func TestParse_CarrierKeepsCasing(t *testing.T) {
	lane := Parse("", "best carrier is UPS for this lane")

	if lane.BestCarrier != "UPS" {
		t.Errorf("Expected 'UPS', got %q", lane.BestCarrier)
	}
}

func TestParse_FieldsFromDifferentTexts(t *testing.T) {
	lane := Parse(
		"I need to move 800 lbs from Omaha to Wichita",
		"The recommended carrier is Heartland Express at $650",
	)

	if lane.SourceCity != "Omaha" || lane.DestinationCity != "Wichita" {
		t.Errorf("Expected Omaha/Wichita, got %q/%q", lane.SourceCity, lane.DestinationCity)
	}
	if lane.Weight == nil || lane.Weight.Value != 800 {
		t.Errorf("Expected 800 lbs from user message, got %+v", lane.Weight)
	}
	if lane.BestCarrier != "Heartland Express" {
		t.Errorf("Expected 'Heartland Express', got %q", lane.BestCarrier)
	}
}

func TestLaneInfo_Signature_Stable(t *testing.T) {
	a := Parse("", "Rates from Los Angeles to Chicago for 500 lbs")
	b := Parse("rates from LOS ANGELES to CHICAGO for 500 lbs", "")

	if a.Signature() != b.Signature() {
		t.Errorf("Expected equal signatures, got %q vs %q", a.Signature(), b.Signature())
	}
}
