// Package services contains the business logic layer of the EnergyMix
// dashboard server.
//
// Services sit between the HTTP transport and the SQLite store. They own
// the presentation pipeline (year filtering, annual aggregation, mix
// fraction normalization, source projection) and the health surface, and
// they are constructed explicitly from the application entry point with
// their dependencies injected. No service touches package-level state.
//
// The contract every query follows: resolution aggregation runs before
// fraction normalization, and each transform is applied exactly once per
// query. Annual percent series are therefore mixes of annual totals, not
// averages of monthly mixes.
package services
