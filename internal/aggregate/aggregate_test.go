package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/tao-yield-api/internal/model"
)

func subnetYield(latest, dailyPast, dailyYield string) model.SubnetYield {
	y := model.SubnetYield{LatestStake: latest}
	if dailyPast != "" {
		y.Stake24hAgo = model.StrPtr(dailyPast)
	}
	if dailyYield != "" {
		y.DailyYield = model.StrPtr(dailyYield)
	}
	return y
}

func TestRollupSumsAcrossSubnets(t *testing.T) {
	doc := model.ValidatorDoc{
		SubnetsData: map[string]model.SubnetYield{
			"1": subnetYield("1100", "1000", "100"),
			"2": subnetYield("2200", "2000", "200"),
		},
	}

	agg := Rollup(doc)

	require.NotNil(t, agg.LatestStake)
	assert.Equal(t, "3300", *agg.LatestStake)
	require.NotNil(t, agg.Stake24hAgo)
	assert.Equal(t, "3000", *agg.Stake24hAgo)
	require.NotNil(t, agg.DailyYield)
	assert.Equal(t, "300", *agg.DailyYield)

	// 300 yield over 3000 past stake in a day annualizes to 3650%.
	require.NotNil(t, agg.DailyApy)
	assert.Equal(t, "3650.00", *agg.DailyApy)

	// No hourly samples anywhere: hourly aggregates stay null.
	assert.Nil(t, agg.HourlyApy)
	assert.Nil(t, agg.Stake1hAgo)
	assert.Nil(t, agg.HourlyYield)
}

func TestRollupNullSubnetDoesNotZeroAggregate(t *testing.T) {
	// Subnet "2" has no daily history. Its absence must not drag the
	// aggregate APY toward zero; only subnet "1" contributes.
	doc := model.ValidatorDoc{
		SubnetsData: map[string]model.SubnetYield{
			"1": subnetYield("1050", "1000", "50"),
			"2": subnetYield("9000", "", ""),
		},
	}

	agg := Rollup(doc)

	require.NotNil(t, agg.DailyApy)
	assert.Equal(t, "1825.00", *agg.DailyApy)
	require.NotNil(t, agg.Stake24hAgo)
	assert.Equal(t, "1000", *agg.Stake24hAgo)
}

func TestRollupOrderIndependent(t *testing.T) {
	build := func(ids []string) model.ValidatorDoc {
		doc := model.ValidatorDoc{SubnetsData: map[string]model.SubnetYield{}}
		stakes := map[string][3]string{
			"1": {"1100", "1000", "100"},
			"2": {"500", "400", "30"},
			"3": {"7000", "6500", "250"},
		}
		for _, id := range ids {
			s := stakes[id]
			doc.SubnetsData[id] = subnetYield(s[0], s[1], s[2])
		}
		return doc
	}

	a := Rollup(build([]string{"1", "2", "3"}))
	b := Rollup(build([]string{"3", "1", "2"}))
	assert.Equal(t, a, b)
}

func TestRollupEmptyDocument(t *testing.T) {
	agg := Rollup(model.ValidatorDoc{SubnetsData: map[string]model.SubnetYield{}})
	assert.Nil(t, agg.LatestStake)
	assert.Nil(t, agg.DailyApy)
	assert.Nil(t, agg.DailyYield)
}

func TestTotalAndSubnetStake(t *testing.T) {
	doc := model.ValidatorDoc{
		SubnetsData: map[string]model.SubnetYield{
			"0": {LatestStake: "100"},
			"5": {LatestStake: "250"},
		},
	}
	assert.Equal(t, int64(350), TotalStake(doc))
	assert.Equal(t, int64(250), SubnetStake(doc, 5))
	assert.Equal(t, int64(0), SubnetStake(doc, 7))
}

func rankedFixture(n int) []Ranked {
	ranked := make([]Ranked, 0, n)
	for i := 0; i < n; i++ {
		hotkey := fmt.Sprintf("hk%03d", i)
		ranked = append(ranked, Ranked{
			Doc:        model.ValidatorDoc{Meta: model.ValidatorMeta{Hotkey: hotkey}},
			TotalStake: int64(i),
		})
	}
	return ranked
}

func TestSortByTotalStake(t *testing.T) {
	ranked := rankedFixture(5)
	SortByTotalStake(ranked, SortDesc)
	assert.Equal(t, int64(4), ranked[0].TotalStake)
	assert.Equal(t, int64(0), ranked[4].TotalStake)

	SortByTotalStake(ranked, SortAsc)
	assert.Equal(t, int64(0), ranked[0].TotalStake)
}

func TestSortIsStable(t *testing.T) {
	ranked := []Ranked{
		{Doc: model.ValidatorDoc{Meta: model.ValidatorMeta{Hotkey: "a"}}, TotalStake: 10},
		{Doc: model.ValidatorDoc{Meta: model.ValidatorMeta{Hotkey: "b"}}, TotalStake: 10},
		{Doc: model.ValidatorDoc{Meta: model.ValidatorMeta{Hotkey: "c"}}, TotalStake: 10},
	}
	SortByTotalStake(ranked, SortDesc)
	assert.Equal(t, "a", ranked[0].Doc.Meta.Hotkey)
	assert.Equal(t, "b", ranked[1].Doc.Meta.Hotkey)
	assert.Equal(t, "c", ranked[2].Doc.Meta.Hotkey)
}

func TestFilterBySubnet(t *testing.T) {
	ranked := []Ranked{
		{SubnetStake: 100},
		{SubnetStake: 0},
		{SubnetStake: 5},
	}
	filtered := FilterBySubnet(ranked)
	require.Len(t, filtered, 2)
	assert.Equal(t, int64(100), filtered[0].SubnetStake)
	assert.Equal(t, int64(5), filtered[1].SubnetStake)
}

func TestPaginateBatch(t *testing.T) {
	ranked := rankedFixture(100)
	batch := 3
	page, pg := Paginate(ranked, nil, &batch, 32)

	assert.Len(t, page, 4)
	assert.Equal(t, 100, pg.Total)
	require.NotNil(t, pg.BatchSize)
	assert.Equal(t, 32, *pg.BatchSize)
	require.NotNil(t, pg.CurrentBatch)
	assert.Equal(t, 3, *pg.CurrentBatch)
	require.NotNil(t, pg.TotalBatches)
	assert.Equal(t, 4, *pg.TotalBatches)
}

func TestPaginateBatchBeyondEnd(t *testing.T) {
	ranked := rankedFixture(10)
	batch := 5
	page, pg := Paginate(ranked, nil, &batch, 32)
	assert.Empty(t, page)
	assert.Equal(t, 10, pg.Total)
}

func TestPaginateBatchWinsOverLimit(t *testing.T) {
	ranked := rankedFixture(100)
	limit := 7
	batch := 0
	page, pg := Paginate(ranked, &limit, &batch, 10)
	assert.Len(t, page, 10)
	require.NotNil(t, pg.CurrentBatch)
	assert.Equal(t, 0, *pg.CurrentBatch)
}

func TestPaginateLimit(t *testing.T) {
	ranked := rankedFixture(20)
	limit := 5
	page, pg := Paginate(ranked, &limit, nil, 32)
	assert.Len(t, page, 5)
	assert.Equal(t, 20, pg.Total)
	assert.Nil(t, pg.BatchSize)
	assert.Nil(t, pg.CurrentBatch)
	assert.Nil(t, pg.TotalBatches)
}

func TestPaginateNoParams(t *testing.T) {
	ranked := rankedFixture(8)
	page, pg := Paginate(ranked, nil, nil, 32)
	assert.Len(t, page, 8)
	assert.Equal(t, 8, pg.Total)
}
