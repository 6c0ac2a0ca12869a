// Package api contains API contract definitions for the EnergyMix dashboard.
// Version v1 represents the current stable API version.
package api

// SeriesRequest represents a production series query. Zero values mean
// "use the dataset defaults": all reportable sources, full year range.
type SeriesRequest struct {
	Sources    []string `json:"sources" query:"sources" validate:"omitempty,dive,source"`
	Resolution string   `json:"resolution" query:"resolution" validate:"omitempty,oneof=monthly annual"`
	Mode       string   `json:"mode" query:"mode" validate:"omitempty,oneof=raw percent"`
	From       int      `json:"from" query:"from" validate:"omitempty,min=1900,max=2200"`
	To         int      `json:"to" query:"to" validate:"omitempty,min=1900,max=2200"`
}

// SeriesExportRequest represents a CSV export of a series query. Filename
// overrides the generated attachment name when present.
type SeriesExportRequest struct {
	SeriesRequest
	Filename string `json:"filename" query:"filename" validate:"omitempty,filename,max=128"`
}
