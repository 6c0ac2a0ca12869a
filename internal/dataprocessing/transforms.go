package dataprocessing

import (
	"sort"
	"time"

	"energymix/pkg/contracts/domain"
)

// ReportableRows converts stored samples to presentation rows, keeping only
// the generation-relevant sources. Crude oil stays in storage and out of
// every presentation result.
func ReportableRows(samples []domain.EnergySample) []domain.Row {
	rows := make([]domain.Row, 0, len(samples))
	for _, sample := range samples {
		values := sample.Values()
		row := domain.Row{
			Date:   sample.Date,
			Values: make(map[string]float64, len(values)-1),
		}
		for _, source := range domain.ReportableSources() {
			row.Values[source] = values[source]
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterYears returns the rows whose calendar year falls inside the
// inclusive [from, to] range, preserving order.
func FilterYears(rows []domain.Row, from, to int) []domain.Row {
	filtered := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		year := row.Date.Year()
		if year >= from && year <= to {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// AggregateAnnual groups rows by calendar year and sums every column.
// Output rows are dated January 1 of their year, ascending. Partial years
// sum whatever months exist.
func AggregateAnnual(rows []domain.Row) []domain.Row {
	totals := make(map[int]map[string]float64)
	for _, row := range rows {
		year := row.Date.Year()
		sum, ok := totals[year]
		if !ok {
			sum = make(map[string]float64, len(row.Values))
			totals[year] = sum
		}
		for source, value := range row.Values {
			sum[source] += value
		}
	}

	years := make([]int, 0, len(totals))
	for year := range totals {
		years = append(years, year)
	}
	sort.Ints(years)

	annual := make([]domain.Row, 0, len(years))
	for _, year := range years {
		annual = append(annual, domain.Row{
			Date:   time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			Values: totals[year],
		})
	}
	return annual
}

// MixFraction converts each row's values to percent of that row's total.
// Zero-total rows come back all zero. Input rows are never mutated.
//
// The query pipeline applies this exactly once, after any resolution
// aggregation; see DataService.Series.
func MixFraction(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		total := row.Total()
		values := make(map[string]float64, len(row.Values))
		for source, value := range row.Values {
			if total == 0 {
				values[source] = 0
			} else {
				values[source] = value / total * 100
			}
		}
		out = append(out, domain.Row{Date: row.Date, Values: values})
	}
	return out
}

// ProjectSources keeps only the named columns, preserving row order.
// Columns a row does not carry are omitted, not zero-filled.
func ProjectSources(rows []domain.Row, sources []string) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		values := make(map[string]float64, len(sources))
		for _, source := range sources {
			if value, ok := row.Values[source]; ok {
				values[source] = value
			}
		}
		out = append(out, domain.Row{Date: row.Date, Values: values})
	}
	return out
}

// CategorizeMix buckets one row into the dashboard's six pie categories:
// gas combines dry gas and plant liquids, "all others" combines hydro,
// geothermal and biomass. Missing columns count as zero.
func CategorizeMix(row domain.Row) domain.MixBreakdown {
	v := row.Values
	return domain.MixBreakdown{
		Year:      row.Date.Year(),
		Gas:       v[domain.SourceGasDry] + v[domain.SourceGasLiquid],
		Coal:      v[domain.SourceCoal],
		Nuclear:   v[domain.SourceNuclear],
		Wind:      v[domain.SourceWind],
		Solar:     v[domain.SourceSolar],
		AllOthers: v[domain.SourceHydro] + v[domain.SourceGeothermal] + v[domain.SourceBiomass],
	}
}

// YearBounds returns the inclusive year range covered by rows. ok is false
// for an empty dataset.
func YearBounds(rows []domain.Row) (domain.YearRange, bool) {
	if len(rows) == 0 {
		return domain.YearRange{}, false
	}

	bounds := domain.YearRange{Min: rows[0].Date.Year(), Max: rows[0].Date.Year()}
	for _, row := range rows[1:] {
		year := row.Date.Year()
		if year < bounds.Min {
			bounds.Min = year
		}
		if year > bounds.Max {
			bounds.Max = year
		}
	}
	return bounds, true
}
