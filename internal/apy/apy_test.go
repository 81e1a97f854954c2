package apy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestWindowAPY(t *testing.T) {
	tests := []struct {
		name    string
		current *int64
		past    *int64
		period  time.Duration
		want    float64
		defined bool
	}{
		{
			name:    "24h window with growth",
			current: i64(1100),
			past:    i64(1000),
			period:  24 * time.Hour,
			// yield=100, annual=100*365=36500, apy=36500/1000*100
			want:    3650.00,
			defined: true,
		},
		{
			name:    "missing current stake",
			current: nil,
			past:    i64(1000),
			period:  24 * time.Hour,
			defined: false,
		},
		{
			name:    "missing past stake",
			current: i64(1100),
			past:    nil,
			period:  24 * time.Hour,
			defined: false,
		},
		{
			name:    "zero past stake",
			current: i64(1100),
			past:    i64(0),
			period:  24 * time.Hour,
			defined: false,
		},
		{
			name:    "zero current stake",
			current: i64(0),
			past:    i64(1000),
			period:  24 * time.Hour,
			defined: false,
		},
		{
			name:    "stake loss clamps to zero",
			current: i64(900),
			past:    i64(1000),
			period:  24 * time.Hour,
			want:    0.00,
			defined: true,
		},
		{
			name:    "7d window",
			current: i64(1070),
			past:    i64(1000),
			period:  7 * 24 * time.Hour,
			// yield=70, annual=70*(365/7)=3650, apy=3650/1000*100
			want:    365.00,
			defined: true,
		},
		{
			name:    "1h window",
			current: i64(1001),
			past:    i64(1000),
			period:  time.Hour,
			// yield=1, annual=1*365*24=8760, apy=8760/1000*100
			want:    876.00,
			defined: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WindowAPY(tt.current, tt.past, tt.period)
			assert.Equal(t, tt.defined, ok)
			if tt.defined {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestYieldNeverNegative(t *testing.T) {
	assert.Equal(t, int64(0), Yield(500, 1000))
	assert.Equal(t, int64(0), Yield(1000, 1000))
	assert.Equal(t, int64(42), Yield(1042, 1000))
}

func TestAnnualizedRateMatchesWindowAPY(t *testing.T) {
	got, ok := WindowAPY(i64(1100), i64(1000), 24*time.Hour)
	assert.True(t, ok)
	assert.InDelta(t, AnnualizedRate(100, 1000, 24*time.Hour), got, 1e-9)
}

func TestEmissionAPY(t *testing.T) {
	// 1 TAO emitted daily against 1000 staked: (1.001)^365-1 ≈ 44.03%
	got := EmissionAPY(1.0, 1000.0)
	assert.InDelta(t, 44.03, got, 0.01)

	assert.Equal(t, 0.0, EmissionAPY(1.0, 0))
}

func TestEmissionAPYNotLinear(t *testing.T) {
	// The compounded figure must diverge from the linear annualization
	// of the same daily rate; callers keep the two metrics separate.
	compounded := EmissionAPY(1.0, 100.0)
	linear := AnnualizedRate(1, 100, 24*time.Hour)
	assert.Greater(t, compounded, linear)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "3650.00", FormatPercent(3650))
	assert.Equal(t, "0.00", FormatPercent(0))
	assert.Equal(t, "12.35", FormatPercent(12.346))
}
