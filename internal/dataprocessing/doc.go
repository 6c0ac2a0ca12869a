// Package dataprocessing reads the EIA monthly primary energy production
// workbook and carries the transforms the dashboard queries are built from.
//
// # Architecture
//
// The package has two halves:
//
// 1. Parser: reads the production workbook and extracts one sample per month
// 2. Transforms: pure functions over rows (year filtering, annual
// aggregation, percent-of-total, source projection, pie categorization)
//
// # Usage
//
// Basic parsing:
//
//	samples, stats, err := dataprocessing.ParseFile("Mix.xlsx", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Building an annual percent series:
//
//	rows := dataprocessing.ReportableRows(samples)
//	rows = dataprocessing.FilterYears(rows, 1980, 2020)
//	rows = dataprocessing.AggregateAnnual(rows)
//	rows = dataprocessing.MixFraction(rows)
//
// # Ordering
//
// Transforms compose, but order carries meaning: MixFraction is applied at
// most once per query, and always after any resolution aggregation.
// Aggregating already-normalized rows sums percentages instead of
// quantities, which is never what a caller wants.
//
// # Error Handling
//
// ParseFile separates hard failures from soft ones. A missing file or a
// workbook whose header row does not carry the expected production columns
// fails the whole parse (ErrSourceFileNotFound, ErrSchemaMismatch). Rows
// with unparseable dates and cells with non-numeric content are coerced or
// skipped and counted in ParseStats, matching how the published workbook
// marks pre-instrumentation months.
package dataprocessing
