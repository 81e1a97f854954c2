package sweep

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/tao-yield-api/internal/chain"
	"github.com/yourorg/tao-yield-api/internal/circuitbreaker"
	"github.com/yourorg/tao-yield-api/internal/store"
)

// fakeChain serves a single subnet with a fixed head and one flat
// historical stake for every past block.
type fakeChain struct {
	head      int64
	holders   []chain.StakeEntry
	pastStake int64
	emission  int64
	failAll   bool
}

func (f *fakeChain) CurrentBlock(ctx context.Context) (int64, error) {
	if f.failAll {
		return 0, errors.New("node unreachable")
	}
	return f.head, nil
}

func (f *fakeChain) Subnets(ctx context.Context) ([]int, error) {
	if f.failAll {
		return nil, errors.New("node unreachable")
	}
	return []int{1}, nil
}

func (f *fakeChain) StakeHolders(ctx context.Context, netuid int, block int64) ([]chain.StakeEntry, error) {
	if f.failAll {
		return nil, errors.New("node unreachable")
	}
	if block == f.head {
		return f.holders, nil
	}
	past := make([]chain.StakeEntry, 0, len(f.holders))
	for _, h := range f.holders {
		past = append(past, chain.StakeEntry{Hotkey: h.Hotkey, Stake: f.pastStake})
	}
	return past, nil
}

func (f *fakeChain) SubnetEmission(ctx context.Context, netuid int) (int64, error) {
	return f.emission, nil
}

func (f *fakeChain) Delegates(ctx context.Context) ([]chain.Delegate, error) {
	return nil, nil
}

func TestRunSweepsStakingValidators(t *testing.T) {
	client := &fakeChain{
		head: 1_000_000,
		holders: []chain.StakeEntry{
			{Hotkey: "hk-active", Stake: 1100},
			{Hotkey: "hk-empty", Stake: 0},
		},
		pastStake: 1000,
	}
	st := store.NewMemoryStore()
	runner := NewRunner(client, st, circuitbreaker.New(5), 12, 4)

	require.NoError(t, runner.Run(context.Background()))

	doc, found, err := st.GetValidator(context.Background(), "hk-active")
	require.NoError(t, err)
	require.True(t, found)

	record, ok := doc.SubnetsData["1"]
	require.True(t, ok)
	assert.Equal(t, "1100", record.LatestStake)
	require.NotNil(t, record.Stake24hAgo)
	assert.Equal(t, "1000", *record.Stake24hAgo)
	require.NotNil(t, record.DailyYield)
	assert.Equal(t, "100", *record.DailyYield)
	require.NotNil(t, record.DailyApy)
	assert.Equal(t, "3650.00", *record.DailyApy)
	require.NotNil(t, record.LastStake)
	assert.Equal(t, "1000", *record.LastStake)

	// Zero-stake holders get no record at all.
	_, found, err = st.GetValidator(context.Background(), "hk-empty")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunFailsFastWhenChainDown(t *testing.T) {
	client := &fakeChain{failAll: true}
	st := store.NewMemoryStore()
	breaker := circuitbreaker.New(1)
	runner := NewRunner(client, st, breaker, 12, 2)

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.GetState())

	// The next run is refused while the circuit is open.
	err = runner.Run(context.Background())
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestBuildSubnetRecordEmissionProjection(t *testing.T) {
	client := &fakeChain{
		head:      1_000_000,
		holders:   []chain.StakeEntry{{Hotkey: "hk", Stake: 1_000_000_000_000}},
		pastStake: 1_000_000_000_000,
	}
	builder := NewBuilder(client, 12)

	// 1 TAO emitted daily against 1000 TAO staked compounds to 44.03%.
	perBlock := int64(1e9) / 7200
	record := builder.BuildSubnetRecord(context.Background(), "hk", 1, 1_000_000_000_000, perBlock, 1_000_000, time.Now())

	require.NotNil(t, record.EmissionApy)
	assert.InDelta(t, 44.03, mustFloat(t, *record.EmissionApy), 0.2)
}

func TestBuildSubnetRecordUnavailableHistory(t *testing.T) {
	client := &fakeChain{
		head:    1_000_000,
		holders: []chain.StakeEntry{{Hotkey: "other", Stake: 500}},
	}
	builder := NewBuilder(client, 12)

	// This hotkey never appears in the historical holder sets, so every
	// window stays unpopulated.
	record := builder.BuildSubnetRecord(context.Background(), "hk", 1, 1100, 0, 1_000_000, time.Now())

	assert.Equal(t, "1100", record.LatestStake)
	assert.Nil(t, record.Stake24hAgo)
	assert.Nil(t, record.DailyYield)
	assert.Nil(t, record.DailyApy)
	assert.Nil(t, record.EmissionApy)
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}
