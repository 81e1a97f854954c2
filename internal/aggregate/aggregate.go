// Package aggregate derives validator-level and fleet-level views from
// the persisted per-subnet yield records. Everything here is pure and
// recomputed on every read; nothing is persisted.
package aggregate

import (
	"sort"
	"strconv"

	"github.com/yourorg/tao-yield-api/internal/apy"
	"github.com/yourorg/tao-yield-api/internal/model"
)

// SortAsc and SortDesc are the accepted sort orders.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TotalStake sums the latest stake across all of a validator's subnet
// records. Unparseable fields contribute zero.
func TotalStake(doc model.ValidatorDoc) int64 {
	var total int64
	for _, subnet := range doc.SubnetsData {
		latest := subnet.LatestStake
		if v, ok := model.ParseStake(&latest); ok {
			total += v
		}
	}
	return total
}

// SubnetStake returns a validator's latest stake in one subnet, or zero
// when the validator holds no record there.
func SubnetStake(doc model.ValidatorDoc, netuid int) int64 {
	subnet, ok := doc.SubnetsData[strconv.Itoa(netuid)]
	if !ok {
		return 0
	}
	latest := subnet.LatestStake
	v, ok := model.ParseStake(&latest)
	if !ok {
		return 0
	}
	return v
}

// windowSums accumulates one window's summed past stake, summed yield,
// and the number of subnets that contributed a past-stake sample.
type windowSums struct {
	pastStake int64
	yield     int64
	count     int
}

// Rollup folds all of a validator's subnet records into the derived
// validator-level metrics. Stake and yield fields are summed with nil
// treated as zero; a presence count per window keeps a window with no
// contributing subnets at a nil aggregate APY rather than zero. The
// aggregate APY is recomputed from the summed yield over the summed
// past stake rather than averaging per-subnet percentages, so the
// result is identical for any iteration order of the subnets.
func Rollup(doc model.ValidatorDoc) model.AggregatedMetrics {
	var latestTotal int64
	sums := map[model.Window]*windowSums{}
	for _, w := range model.Windows {
		sums[w] = &windowSums{}
	}

	for _, subnet := range doc.SubnetsData {
		latest := subnet.LatestStake
		if v, ok := model.ParseStake(&latest); ok {
			latestTotal += v
		}
		for _, w := range model.Windows {
			s := sums[w]
			if v, ok := model.ParseStake(subnet.PastStake(w)); ok {
				s.pastStake += v
				s.count++
			}
			if v, ok := model.ParseStake(subnet.Yield(w)); ok {
				s.yield += v
			}
		}
	}

	agg := model.AggregatedMetrics{
		LatestStake:  positiveStake(latestTotal),
		Stake1hAgo:   positiveStake(sums[model.Window1h].pastStake),
		Stake24hAgo:  positiveStake(sums[model.Window24h].pastStake),
		Stake7dAgo:   positiveStake(sums[model.Window7d].pastStake),
		Stake30dAgo:  positiveStake(sums[model.Window30d].pastStake),
		HourlyYield:  positiveStake(sums[model.Window1h].yield),
		DailyYield:   positiveStake(sums[model.Window24h].yield),
		WeeklyYield:  positiveStake(sums[model.Window7d].yield),
		MonthlyYield: positiveStake(sums[model.Window30d].yield),
		HourlyApy:    windowAggregateApy(sums[model.Window1h], model.Window1h),
		DailyApy:     windowAggregateApy(sums[model.Window24h], model.Window24h),
		WeeklyApy:    windowAggregateApy(sums[model.Window7d], model.Window7d),
		MonthlyApy:   windowAggregateApy(sums[model.Window30d], model.Window30d),
	}
	return agg
}

func windowAggregateApy(s *windowSums, w model.Window) *string {
	if s.count == 0 || s.pastStake <= 0 {
		return nil
	}
	rate := apy.AnnualizedRate(s.yield, s.pastStake, w.Duration())
	return model.StrPtr(apy.FormatPercent(rate))
}

func positiveStake(v int64) *string {
	if v <= 0 {
		return nil
	}
	return model.StrPtr(model.FormatStake(v))
}

// Ranked pairs a validator document with its derived sort keys.
type Ranked struct {
	Doc         model.ValidatorDoc
	TotalStake  int64
	SubnetStake int64
}

// Rank computes sort keys for every document. When netuid is non-nil
// the per-subnet stake key is populated as well.
func Rank(docs []model.ValidatorDoc, netuid *int) []Ranked {
	ranked := make([]Ranked, 0, len(docs))
	for _, doc := range docs {
		r := Ranked{Doc: doc, TotalStake: TotalStake(doc)}
		if netuid != nil {
			r.SubnetStake = SubnetStake(doc, *netuid)
		}
		ranked = append(ranked, r)
	}
	return ranked
}

// SortByTotalStake orders validators by fleet-wide stake. The sort is
// stable: equal keys keep their original relative order.
func SortByTotalStake(ranked []Ranked, order string) {
	desc := order != SortAsc
	sort.SliceStable(ranked, func(i, j int) bool {
		if desc {
			return ranked[i].TotalStake > ranked[j].TotalStake
		}
		return ranked[i].TotalStake < ranked[j].TotalStake
	})
}

// SortBySubnetStake orders validators by their stake in one subnet.
func SortBySubnetStake(ranked []Ranked, order string) {
	desc := order != SortAsc
	sort.SliceStable(ranked, func(i, j int) bool {
		if desc {
			return ranked[i].SubnetStake > ranked[j].SubnetStake
		}
		return ranked[i].SubnetStake < ranked[j].SubnetStake
	})
}

// FilterBySubnet keeps only validators holding positive stake in the
// ranked subnet.
func FilterBySubnet(ranked []Ranked) []Ranked {
	filtered := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		if r.SubnetStake > 0 {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Pagination describes the page served by a listing response. The
// batch fields are null when limit-based pagination (or none) was used.
type Pagination struct {
	Total        int  `json:"total"`
	BatchSize    *int `json:"batch_size"`
	CurrentBatch *int `json:"current_batch"`
	TotalBatches *int `json:"total_batches"`
}

// Paginate slices a listing by either a (batch, batchSize) pair or an
// absolute limit. Batch pagination takes precedence when both are
// supplied. Total is counted before slicing.
func Paginate(ranked []Ranked, limit, batch *int, batchSize int) ([]Ranked, Pagination) {
	total := len(ranked)

	if batch != nil && *batch >= 0 {
		if batchSize <= 0 {
			batchSize = 32
		}
		start := *batch * batchSize
		end := start + batchSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		totalBatches := (total + batchSize - 1) / batchSize
		return ranked[start:end], Pagination{
			Total:        total,
			BatchSize:    &batchSize,
			CurrentBatch: batch,
			TotalBatches: &totalBatches,
		}
	}

	if limit != nil && *limit > 0 && *limit < total {
		return ranked[:*limit], Pagination{Total: total}
	}
	return ranked, Pagination{Total: total}
}
