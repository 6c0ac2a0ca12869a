package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnergySampleValues(t *testing.T) {
	sample := EnergySample{
		Date:       time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		Coal:       1.1,
		GasDry:     2.2,
		GasLiquid:  0.3,
		CrudeOil:   1.9,
		Nuclear:    0.7,
		Hydro:      0.25,
		Geothermal: 0.02,
		Solar:      0.11,
		Wind:       0.31,
		Biomass:    0.4,
	}

	values := sample.Values()
	require.Len(t, values, len(AllSources()))
	assert.Equal(t, 1.1, values[SourceCoal])
	assert.Equal(t, 2.2, values[SourceGasDry])
	assert.Equal(t, 1.9, values[SourceCrudeOil])
	assert.Equal(t, 0.31, values[SourceWind])
}

func TestAllSourcesCoversEveryColumn(t *testing.T) {
	all := AllSources()
	assert.Len(t, all, 10)

	seen := make(map[string]bool, len(all))
	for _, s := range all {
		assert.False(t, seen[s], "duplicate source %q", s)
		seen[s] = true
	}
}

func TestReportableSourcesExcludesCrudeOil(t *testing.T) {
	for _, s := range ReportableSources() {
		assert.NotEqual(t, SourceCrudeOil, s)
	}
	assert.Len(t, ReportableSources(), len(AllSources())-1)
}

func TestRowTotal(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]float64
		want   float64
	}{
		{
			name:   "sums all columns",
			values: map[string]float64{SourceCoal: 1.5, SourceWind: 0.5, SourceSolar: 1.0},
			want:   3.0,
		},
		{
			name:   "empty row",
			values: map[string]float64{},
			want:   0,
		},
		{
			name:   "all zeros",
			values: map[string]float64{SourceCoal: 0, SourceWind: 0},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{Date: time.Now(), Values: tt.values}
			assert.InDelta(t, tt.want, row.Total(), 1e-12)
		})
	}
}

func TestRowCloneIsIndependent(t *testing.T) {
	original := Row{
		Date:   time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
		Values: map[string]float64{SourceCoal: 2.0},
	}

	clone := original.Clone()
	clone.Values[SourceCoal] = 99.0

	assert.Equal(t, 2.0, original.Values[SourceCoal])
	assert.Equal(t, 99.0, clone.Values[SourceCoal])
}

func TestMixBreakdownTotal(t *testing.T) {
	breakdown := MixBreakdown{Gas: 15, Coal: 20, Nuclear: 8, Wind: 3, Solar: 2, AllOthers: 2}
	assert.InDelta(t, 50.0, breakdown.Total(), 1e-12)
}

func TestYearRangeContains(t *testing.T) {
	r := YearRange{Min: 1973, Max: 2023}

	assert.True(t, r.Contains(1973))
	assert.True(t, r.Contains(2023))
	assert.True(t, r.Contains(2000))
	assert.False(t, r.Contains(1972))
	assert.False(t, r.Contains(2024))
}

func TestEqualValues(t *testing.T) {
	date := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a    Row
		b    Row
		want bool
	}{
		{
			name: "identical rows",
			a:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			b:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			want: true,
		},
		{
			name: "within tolerance",
			a:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			b:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0 + 1e-12}},
			want: true,
		},
		{
			name: "different value",
			a:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			b:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.1}},
			want: false,
		},
		{
			name: "different columns",
			a:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			b:    Row{Date: date, Values: map[string]float64{SourceWind: 1.0}},
			want: false,
		},
		{
			name: "different dates",
			a:    Row{Date: date, Values: map[string]float64{SourceCoal: 1.0}},
			b:    Row{Date: date.AddDate(0, 1, 0), Values: map[string]float64{SourceCoal: 1.0}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualValues(tt.a, tt.b, 1e-9))
		})
	}
}
