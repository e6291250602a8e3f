// Package ratematrix turns per-carrier spot quotes into the
// carrier-by-date cost table shown next to the assistant and exported
// to spreadsheets.
package ratematrix

import (
	"sort"

	"github.com/vedsathwik275/envision-sub000/internal/models"
)

// FromSpotPayload reshapes the spot engine's nested costDetails form
// into the flat per-carrier quote lists the builder consumes.
func FromSpotPayload(p models.SpotAnalysisPayload) []models.CarrierQuotes {
	out := make([]models.CarrierQuotes, 0, len(p.SpotCosts))
	for _, cc := range p.SpotCosts {
		cq := models.CarrierQuotes{
			Carrier: cc.Carrier,
			Quotes:  make([]models.SpotQuote, 0, len(cc.CostDetails)),
		}
		for _, d := range cc.CostDetails {
			cq.Quotes = append(cq.Quotes, models.SpotQuote{
				Carrier:   cc.Carrier,
				ShipDate:  d.ShipDate,
				TotalCost: d.TotalSpotCost,
			})
		}
		out = append(out, cq)
	}
	return out
}

// Build assembles the rate matrix. Dates are deduplicated and sorted
// ascending, carriers sorted by name, so identical input produces
// identical output no matter how the quotes arrived. A carrier that
// never quoted keeps its row with no cells and a nil average; absent
// cells are excluded from every average, never counted as zero.
func Build(input []models.CarrierQuotes) models.RateMatrix {
	dateSet := make(map[string]bool)
	cellsByCarrier := make(map[string]map[string]float64)
	carriers := make([]string, 0, len(input))

	for _, cq := range input {
		if _, seen := cellsByCarrier[cq.Carrier]; !seen {
			cellsByCarrier[cq.Carrier] = make(map[string]float64)
			carriers = append(carriers, cq.Carrier)
		}
		for _, q := range cq.Quotes {
			dateSet[q.ShipDate] = true
			// Duplicate carrier+date pairs: the later quote wins.
			cellsByCarrier[cq.Carrier][q.ShipDate] = q.TotalCost
		}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	sort.Strings(carriers)

	matrix := models.RateMatrix{
		Dates: dates,
		Rows:  make([]models.CarrierRow, 0, len(carriers)),
	}

	var marketSum float64
	var marketCount int
	for _, carrier := range carriers {
		cells := cellsByCarrier[carrier]
		row := models.CarrierRow{Carrier: carrier, Cells: cells}
		var sum float64
		for _, cost := range cells {
			sum += cost
			marketSum += cost
			marketCount++
			if matrix.MarketMin == nil || cost < *matrix.MarketMin {
				matrix.MarketMin = floatPtr(cost)
			}
			if matrix.MarketMax == nil || cost > *matrix.MarketMax {
				matrix.MarketMax = floatPtr(cost)
			}
		}
		if len(cells) > 0 {
			row.Average = floatPtr(sum / float64(len(cells)))
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	if marketCount > 0 {
		matrix.MarketAverage = floatPtr(marketSum / float64(marketCount))
	}
	return matrix
}

func floatPtr(v float64) *float64 {
	return &v
}
