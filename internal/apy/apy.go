// Package apy contains the pure yield and APY calculators. Two distinct
// APY notions live here: the window-based calculator used by the sweep
// (linear annualization of an observed stake delta) and the coarser
// emission-based calculator (daily-rate compounding). Their results are
// not numerically reconcilable and are reported as separate metrics.
package apy

import (
	"fmt"
	"math"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Yield returns the absolute yield over a window: the stake gained
// between the past and current samples, clamped at zero. A validator
// that lost stake over the window therefore reports zero yield (and
// 0.00% APY), not a negative rate. This masks stake reduction; it is a
// known simplification kept for compatibility with the reported data.
func Yield(currentStake, pastStake int64) int64 {
	if currentStake <= pastStake {
		return 0
	}
	return currentStake - pastStake
}

// WindowAPY computes the annualized percentage yield from a pair of
// stake samples and the elapsed period between them.
//
// It returns (0, false), meaning "undefined" as distinct from zero
// yield, when either sample is missing or zero.
// Annualization is simple linear scaling, not compounding:
//
//	apy = yield * (365 / periodDays) / pastStake * 100
func WindowAPY(currentStake, pastStake *int64, period time.Duration) (float64, bool) {
	if currentStake == nil || *currentStake == 0 {
		return 0, false
	}
	if pastStake == nil || *pastStake == 0 {
		return 0, false
	}

	yieldAmount := Yield(*currentStake, *pastStake)
	return AnnualizedRate(yieldAmount, *pastStake, period), true
}

// AnnualizedRate linearly annualizes an already-known yield amount over
// a period against a positive past stake, as a percentage. Callers must
// guard pastStake > 0; the window aggregator reuses this directly on
// summed yields and summed past stakes.
func AnnualizedRate(yieldAmount, pastStake int64, period time.Duration) float64 {
	periodDays := period.Seconds() / secondsPerDay
	annualYield := float64(yieldAmount) * (365 / periodDays)
	return annualYield / float64(pastStake) * 100
}

// EmissionAPY computes the compounded annual yield from a daily
// emission rate: (1 + dailyEmission/stake)^365 - 1, as a percentage
// rounded to two decimals. Returns 0 for zero stake.
func EmissionAPY(dailyEmission, stake float64) float64 {
	if stake == 0 {
		return 0
	}
	dailyRate := dailyEmission / stake
	compounded := math.Pow(1+dailyRate, 365) - 1
	return math.Round(compounded*100*100) / 100
}

// FormatPercent renders an APY value as its two-decimal wire string.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
