package domain

import (
	"math"
	"sort"
	"time"
)

// EnergySample represents one month of U.S. primary energy production,
// in quadrillion BTU per source
type EnergySample struct {
	Date       time.Time `json:"date" db:"date"`
	Coal       float64   `json:"coal" db:"coal" validate:"min=0"`
	GasDry     float64   `json:"gas_dry" db:"gas_dry" validate:"min=0"`
	GasLiquid  float64   `json:"gas_liquid" db:"gas_liquid" validate:"min=0"`
	CrudeOil   float64   `json:"crude_oil" db:"crude_oil" validate:"min=0"`
	Nuclear    float64   `json:"nuclear" db:"nuclear" validate:"min=0"`
	Hydro      float64   `json:"hydro" db:"hydro" validate:"min=0"`
	Geothermal float64   `json:"geothermal" db:"geothermal" validate:"min=0"`
	Solar      float64   `json:"solar" db:"solar" validate:"min=0"`
	Wind       float64   `json:"wind" db:"wind" validate:"min=0"`
	Biomass    float64   `json:"biomass" db:"biomass" validate:"min=0"`
}

// MonthLayout is the canonical year-month form samples are keyed by,
// in storage and on the wire.
const MonthLayout = "2006-01"

// Source column names, shared by storage, transforms and the API
const (
	SourceCoal       = "coal"
	SourceGasDry     = "gas_dry"
	SourceGasLiquid  = "gas_liquid"
	SourceCrudeOil   = "crude_oil"
	SourceNuclear    = "nuclear"
	SourceHydro      = "hydro"
	SourceGeothermal = "geothermal"
	SourceSolar      = "solar"
	SourceWind       = "wind"
	SourceBiomass    = "biomass"
)

// Month returns the sample's date in MonthLayout form.
func (s EnergySample) Month() string {
	return s.Date.Format(MonthLayout)
}

// AllSources returns every production column in storage order.
func AllSources() []string {
	return []string{
		SourceCoal, SourceGasDry, SourceGasLiquid, SourceCrudeOil,
		SourceNuclear, SourceHydro, SourceGeothermal, SourceSolar,
		SourceWind, SourceBiomass,
	}
}

// ReportableSources returns the generation-relevant columns served by the
// presentation API. Crude oil is persisted but never reported.
func ReportableSources() []string {
	return []string{
		SourceCoal, SourceGasDry, SourceGasLiquid,
		SourceNuclear, SourceHydro, SourceGeothermal, SourceSolar,
		SourceWind, SourceBiomass,
	}
}

// Values returns the sample's production columns as a name-to-value map.
func (s EnergySample) Values() map[string]float64 {
	return map[string]float64{
		SourceCoal:       s.Coal,
		SourceGasDry:     s.GasDry,
		SourceGasLiquid:  s.GasLiquid,
		SourceCrudeOil:   s.CrudeOil,
		SourceNuclear:    s.Nuclear,
		SourceHydro:      s.Hydro,
		SourceGeothermal: s.Geothermal,
		SourceSolar:      s.Solar,
		SourceWind:       s.Wind,
		SourceBiomass:    s.Biomass,
	}
}

// Set assigns the named production column. Unknown names are ignored;
// callers match against AllSources first.
func (s *EnergySample) Set(source string, value float64) {
	switch source {
	case SourceCoal:
		s.Coal = value
	case SourceGasDry:
		s.GasDry = value
	case SourceGasLiquid:
		s.GasLiquid = value
	case SourceCrudeOil:
		s.CrudeOil = value
	case SourceNuclear:
		s.Nuclear = value
	case SourceHydro:
		s.Hydro = value
	case SourceGeothermal:
		s.Geothermal = value
	case SourceSolar:
		s.Solar = value
	case SourceWind:
		s.Wind = value
	case SourceBiomass:
		s.Biomass = value
	}
}

// Row is the column-generic shape the presentation transforms operate on:
// a date axis value plus named numeric columns. Transforms treat the value
// set as opaque so they compose regardless of which columns survived
// projection.
type Row struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Total sums every numeric column in the row. NaN and infinite values are
// never produced by the loader, so no filtering happens here.
func (r Row) Total() float64 {
	var total float64
	for _, v := range r.Values {
		total += v
	}
	return total
}

// Clone returns a deep copy of the row. Transforms return fresh rows and
// never mutate their inputs.
func (r Row) Clone() Row {
	values := make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{Date: r.Date, Values: values}
}

// Columns returns the row's column names in lexical order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r.Values))
	for k := range r.Values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// MixBreakdown represents one row of production bucketed into the
// dashboard's six pie categories. Gas combines dry gas and plant liquids;
// AllOthers combines hydro, geothermal and biomass.
type MixBreakdown struct {
	Year      int     `json:"year"`
	Gas       float64 `json:"gas"`
	Coal      float64 `json:"coal"`
	Nuclear   float64 `json:"nuclear"`
	Wind      float64 `json:"wind"`
	Solar     float64 `json:"solar"`
	AllOthers float64 `json:"all_others"`
}

// Total sums the six categories.
func (m MixBreakdown) Total() float64 {
	return m.Gas + m.Coal + m.Nuclear + m.Wind + m.Solar + m.AllOthers
}

// Resolution selects the time granularity of a series query
type Resolution string

const (
	ResolutionMonthly Resolution = "monthly"
	ResolutionAnnual  Resolution = "annual"
)

// ValueMode selects how series values are expressed
type ValueMode string

const (
	ValueModeRaw     ValueMode = "raw"     // quadrillion BTU
	ValueModePercent ValueMode = "percent" // share of the row total, 0-100
)

// SeriesQuery represents a resolved presentation query: which sources to
// project, at which resolution, in which value mode, over an inclusive
// year range.
type SeriesQuery struct {
	Sources    []string   `json:"sources"`
	Resolution Resolution `json:"resolution"`
	Mode       ValueMode  `json:"mode"`
	FromYear   int        `json:"from_year"`
	ToYear     int        `json:"to_year"`
}

// YearRange represents the inclusive year bounds of the loaded dataset.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether the given year falls inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// EqualValues reports whether two rows carry the same columns with values
// equal within tolerance. Used by tests and by the loader's idempotency
// checks; tolerance guards against float64 accumulation order.
func EqualValues(a, b Row, tolerance float64) bool {
	if !a.Date.Equal(b.Date) || len(a.Values) != len(b.Values) {
		return false
	}
	for k, av := range a.Values {
		bv, ok := b.Values[k]
		if !ok || math.Abs(av-bv) > tolerance {
			return false
		}
	}
	return true
}
