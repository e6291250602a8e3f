// Package laneparser extracts structured lane information from raw
// conversation turns. It is pure text processing: no I/O, no shared
// state, best effort by design. A turn that mentions no lane yields the
// zero LaneInfo and that is a normal outcome, not an error.
package laneparser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

var (
	// "from Los Angeles, CA to Chicago, IL is $1200". Captures run wide
	// (commas and periods included) and get trimmed token by token
	// afterwards, because RE2 has no lookahead to stop at clause breaks.
	fromToRe = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z][A-Za-z .,'\-]*?)\s+to\s+([A-Za-z][A-Za-z .,'\-]*)`)

	// "Los Angeles to Chicago" without a leading "from". Requires
	// capitalized tokens on both sides so ordinary prose ("I want to
	// go") never matches.
	cityPairRe = regexp.MustCompile(`\b([A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*)*(?:,\s*[A-Z]{2})?)\s+to\s+([A-Z][A-Za-z.'\-]*(?:\s+[A-Z][A-Za-z.'\-]*)*(?:,\s*[A-Z]{2})?)`)

	// "Chicago, IL" or "Chicago, IL, US" after chunk cleanup. Unanchored
	// at the end so stray words after the state code are dropped.
	cityStateRe = regexp.MustCompile(`^(.+?)\s*,\s*([A-Za-z]{2})\b(?:\s*,\s*([A-Za-z]{2,3})\b)?`)

	weightRe  = regexp.MustCompile(`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s*(lbs?|pounds?|kgs?|kilograms?|tons?)\b`)
	volumeRe  = regexp.MustCompile(`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s*(pallets?|cbm|m3|cubic\s+met(?:er|re)s?|cuft|ft3|cubic\s+feet)\b`)
	bestRe    = regexp.MustCompile(`(?i)\b(?:best|recommended|preferred|cheapest)\s+carrier\b\s*(?:(?:is|was|would\s+be)\b)?\s*:?\s*([A-Za-z][A-Za-z0-9 .&'\-]*)`)
	worstRe   = regexp.MustCompile(`(?i)\b(?:worst|avoid(?:ed|ing)?(?:\s+the)?)\s+carrier\b\s*(?:(?:is|was|would\s+be)\b)?\s*:?\s*([A-Za-z][A-Za-z0-9 .&'\-]*)`)
)

// locationStop ends a location chunk: verbs and rate words that start
// the clause after the city. Articles and prepositions are deliberately
// absent so names like "Isle of Palms" survive.
var locationStop = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"will": true, "would": true, "can": true, "could": true, "should": true,
	"has": true, "have": true, "had": true,
	"cost": true, "costs": true, "costing": true,
	"rate": true, "rates": true, "rated": true,
	"average": true, "averages": true, "averaged": true,
	"runs": true, "ranges": true, "takes": true,
	"via": true, "using": true, "with": true,
	"to": true, "from": true, "for": true, "at": true,
	"on": true, "in": true, "by": true, "per": true,
	"next": true, "today": true, "tomorrow": true,
}

// carrierStop ends a carrier name chunk.
var carrierStop = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"has": true, "have": true, "had": true,
	"with": true, "at": true, "because": true, "due": true,
	"for": true, "on": true, "in": true, "by": true, "but": true,
	"the": true, "their": true, "its": true, "it": true,
	"this": true, "that": true, "which": true, "who": true,
	"as": true, "to": true, "from": true,
	"will": true, "would": true, "can": true, "could": true, "should": true,
	"offers": true, "offered": true, "charges": true, "charged": true,
	"cost": true, "costs": true, "rate": true, "rates": true,
	"quoted": true, "quotes": true,
}

// locationAbbrev are period-terminated tokens that are part of a city
// name rather than a sentence end.
var locationAbbrev = map[string]bool{
	"st.": true, "ft.": true, "mt.": true, "pt.": true,
}

var weightUnits = map[string]string{
	"lb": "lbs", "lbs": "lbs", "pound": "lbs", "pounds": "lbs",
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"ton": "tons", "tons": "tons",
}

var volumeUnits = map[string]string{
	"pallet": "pallets", "pallets": "pallets",
	"cbm": "cbm", "m3": "cbm",
	"cuft": "cuft", "ft3": "cuft",
}

// Parse extracts lane information from a finished conversation turn.
// The assistant's answer is scanned before the user's message for every
// field because the answer usually restates the lane more precisely.
// Extractors are independent: a field found in neither text is simply
// left empty.
func Parse(userMessage, assistantAnswer string) models.LaneInfo {
	var lane models.LaneInfo
	texts := [2]string{assistantAnswer, userMessage}

	for _, text := range texts {
		if origin, dest, ok := extractLocationPair(text); ok {
			lane.SourceCity, lane.SourceState, lane.SourceCountry = origin.city, origin.state, origin.country
			lane.DestinationCity, lane.DestinationState, lane.DestinationCountry = dest.city, dest.state, dest.country
			break
		}
	}
	for _, text := range texts {
		if m := extractMeasurement(text, weightRe, weightUnits); m != nil {
			lane.Weight = m
			break
		}
	}
	for _, text := range texts {
		if m := extractMeasurement(text, volumeRe, volumeUnits); m != nil {
			lane.Volume = m
			break
		}
	}
	for _, text := range texts {
		if c := extractCarrier(text, bestRe); c != "" {
			lane.BestCarrier = c
			break
		}
	}
	for _, text := range texts {
		if c := extractCarrier(text, worstRe); c != "" {
			lane.WorstCarrier = c
			break
		}
	}
	return lane
}

type location struct {
	city    string
	state   string
	country string
}

func extractLocationPair(text string) (location, location, bool) {
	if text == "" {
		return location{}, location{}, false
	}
	for _, re := range []*regexp.Regexp{fromToRe, cityPairRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		origin := parseLocation(m[1])
		dest := parseLocation(m[2])
		if origin.city == "" && dest.city == "" {
			continue
		}
		return origin, dest, true
	}
	return location{}, location{}, false
}

// parseLocation trims a raw regex capture down to the location itself,
// then splits off state and country codes.
func parseLocation(chunk string) location {
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(chunk) {
		plain := strings.ToLower(strings.TrimRight(tok, ".,!?;:"))
		if plain == "" || locationStop[plain] {
			break
		}
		if strings.HasSuffix(tok, ".") && !locationAbbrev[strings.ToLower(tok)] {
			// Sentence end; keep the word, drop everything after.
			kept = append(kept, strings.TrimRight(tok, "."))
			break
		}
		kept = append(kept, tok)
	}
	// Trailing articles left behind by a stop-word cut.
	for len(kept) > 0 {
		last := strings.ToLower(strings.TrimRight(kept[len(kept)-1], ".,"))
		if last != "of" && last != "the" && last != "and" {
			break
		}
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 0 {
		return location{}
	}

	var loc location
	joined := strings.TrimRight(strings.Join(kept, " "), ".,")
	if m := cityStateRe.FindStringSubmatch(joined); m != nil {
		loc.city = normalizeCity(m[1])
		loc.state = strings.ToUpper(m[2])
		if m[3] != "" {
			loc.country = strings.ToUpper(m[3])
		}
	} else {
		loc.city = normalizeCity(joined)
	}
	if loc.city != "" && loc.country == "" {
		loc.country = "US"
	}
	return loc
}

// normalizeCity title-cases a city name, keeping internal "of", "the"
// and "and" lowercase and stripping a trailing standalone "city" suffix
// ("chicago city" and "Chicago" are the same place).
func normalizeCity(raw string) string {
	words := strings.Fields(strings.ToLower(raw))
	if len(words) > 1 && words[len(words)-1] == "city" {
		words = words[:len(words)-1]
	}
	for i, w := range words {
		if i > 0 && (w == "of" || w == "the" || w == "and") {
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func extractMeasurement(text string, re *regexp.Regexp, units map[string]string) *models.Measurement {
	if text == "" {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	unit := strings.ToLower(strings.Join(strings.Fields(m[2]), " "))
	if canonical, ok := units[unit]; ok {
		unit = canonical
	} else if strings.HasPrefix(unit, "cubic met") {
		unit = "cbm"
	} else if strings.HasPrefix(unit, "cubic f") {
		unit = "cuft"
	}
	return &models.Measurement{Value: value, Unit: unit}
}

func extractCarrier(text string, re *regexp.Regexp) string {
	if text == "" {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	kept := make([]string, 0, 4)
	for _, tok := range strings.Fields(m[1]) {
		plain := strings.ToLower(strings.TrimRight(tok, ".,!?;:"))
		if plain == "" || carrierStop[plain] {
			break
		}
		if trimmed := strings.TrimRight(tok, ".,!?;:"); trimmed != tok {
			// Punctuation ends the name.
			kept = append(kept, trimmed)
			break
		}
		kept = append(kept, tok)
	}
	for len(kept) > 0 {
		last := strings.ToLower(kept[len(kept)-1])
		if last != "and" && last != "&" && last != "of" && last != "the" {
			break
		}
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, " ")
}
