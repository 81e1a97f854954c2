// Package model defines the core data structures for the tao-yield-api.
package model

import (
	"strconv"
	"time"
)

// Window identifies one of the fixed lookback windows used for yield
// sampling. The set is static configuration, not a runtime entity.
type Window string

// Supported lookback windows.
const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// Windows lists every lookback window in sampling order.
var Windows = []Window{Window1h, Window24h, Window7d, Window30d}

// Duration returns the length of the lookback window.
func (w Window) Duration() time.Duration {
	switch w {
	case Window1h:
		return time.Hour
	case Window24h:
		return 24 * time.Hour
	case Window7d:
		return 7 * 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Seconds returns the window length in whole seconds.
func (w Window) Seconds() int64 {
	return int64(w.Duration() / time.Second)
}

// SubnetYield is the persisted per-(validator, subnet) yield record.
// All stake and yield values are decimal strings in rao (the smallest
// integer unit) so very large balances survive JSON round-trips without
// precision loss. APY values are percentage strings with two decimals.
// A nil pointer means "no data for this point", which is a normal
// outcome (the chain query failed or the validator was not registered
// at the sampled block), never an error.
type SubnetYield struct {
	LatestStake string `json:"latestStake"`

	// Stake five blocks before the sweep's reference block.
	LastStake *string `json:"lastStake"`

	Stake1hAgo  *string `json:"stake1hAgo"`
	Stake24hAgo *string `json:"stake24hAgo"`
	Stake7dAgo  *string `json:"stake7dAgo"`
	Stake30dAgo *string `json:"stake30dAgo"`

	HourlyYield  *string `json:"hourlyYield"`
	DailyYield   *string `json:"dailyYield"`
	WeeklyYield  *string `json:"weeklyYield"`
	MonthlyYield *string `json:"monthlyYield"`

	HourlyApy  *string `json:"hourlyApy"`
	DailyApy   *string `json:"dailyApy"`
	WeeklyApy  *string `json:"weeklyApy"`
	MonthlyApy *string `json:"monthlyApy"`

	// EmissionApy is the coarser daily-emission-based APY (compounded),
	// a distinct metric from the window APYs above. The two figures are
	// not numerically reconcilable and must not be conflated.
	EmissionApy *string `json:"emissionApy,omitempty"`
}

// PastStake returns the historical stake field for a window.
func (s SubnetYield) PastStake(w Window) *string {
	switch w {
	case Window1h:
		return s.Stake1hAgo
	case Window24h:
		return s.Stake24hAgo
	case Window7d:
		return s.Stake7dAgo
	case Window30d:
		return s.Stake30dAgo
	}
	return nil
}

// Yield returns the yield field for a window.
func (s SubnetYield) Yield(w Window) *string {
	switch w {
	case Window1h:
		return s.HourlyYield
	case Window24h:
		return s.DailyYield
	case Window7d:
		return s.WeeklyYield
	case Window30d:
		return s.MonthlyYield
	}
	return nil
}

// ValidatorMeta carries a validator's identity metadata. It is supplied
// by the metadata sync job, not computed by the yield core.
type ValidatorMeta struct {
	ID            int     `json:"id"`
	Hotkey        string  `json:"hotkey"`
	Coldkey       string  `json:"coldkey"`
	Take          string  `json:"take"`
	Verified      bool    `json:"verified"`
	Name          string  `json:"name"`
	Logo          *string `json:"logo"`
	URL           *string `json:"url"`
	Description   string  `json:"description"`
	VerifiedBadge bool    `json:"verifiedBadge"`
	Twitter       *string `json:"twitter"`
}

// ValidatorDoc is one persisted validator document, keyed by hotkey,
// embedding the per-subnet yield records under the subnet id (as a
// decimal string key, mirroring the wire format).
type ValidatorDoc struct {
	Meta        ValidatorMeta          `json:"meta"`
	SubnetsData map[string]SubnetYield `json:"subnetsData"`
	LastUpdated string                 `json:"last_updated"`
}

// SubnetInfo is the persisted name/symbol record for one subnet.
type SubnetInfo struct {
	Netuid      string `json:"netuid"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	LastUpdated string `json:"last_updated"`
}

// AggregatedMetrics is the derived validator-level rollup of all subnet
// records. It is recomputed from the raw records on every read and is
// never persisted.
type AggregatedMetrics struct {
	LatestStake  *string `json:"latestStake"`
	Stake1hAgo   *string `json:"stake1hAgo"`
	Stake24hAgo  *string `json:"stake24hAgo"`
	Stake7dAgo   *string `json:"stake7dAgo"`
	Stake30dAgo  *string `json:"stake30dAgo"`
	HourlyYield  *string `json:"hourlyYield"`
	DailyYield   *string `json:"dailyYield"`
	WeeklyYield  *string `json:"weeklyYield"`
	MonthlyYield *string `json:"monthlyYield"`
	HourlyApy    *string `json:"hourlyApy"`
	DailyApy     *string `json:"dailyApy"`
	WeeklyApy    *string `json:"weeklyApy"`
	MonthlyApy   *string `json:"monthlyApy"`
}

// FormatStake renders a stake amount as its decimal-string wire form.
func FormatStake(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatStakePtr renders an optional stake amount, preserving nil.
func FormatStakePtr(v *int64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatInt(*v, 10)
	return &s
}

// ParseStake parses a decimal-string stake field. The boolean is false
// for nil, empty, or malformed values, which readers must treat as
// "no data" rather than an error.
func ParseStake(s *string) (int64, bool) {
	if s == nil || *s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(*s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// StrPtr returns a pointer to s. Convenience for optional wire fields.
func StrPtr(s string) *string {
	return &s
}
