// Package http contains the HTTP handlers of the EnergyMix dashboard API.
//
// Handlers are thin: they parse and validate the request surface, call
// into the services layer, and render JSON (or CSV for the export
// endpoint). Errors render as RFC 7807 problem documents through the
// central error handler. The chart-drawing frontend is a separate
// consumer of these endpoints and lives outside this repository.
//
// Routes:
//
//	GET /api/series         production series (sources, resolution, mode, year range)
//	GET /api/series/export  the same series as a CSV attachment
//	GET /api/mix/{year}     six-category breakdown of one year's totals
//	GET /api/sources        selectable production sources
//	GET /api/years          year bounds of the loaded dataset
//	GET /api/health         health, readiness, liveness, version
package http
