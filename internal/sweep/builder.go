// Package sweep periodically samples on-chain stake and rebuilds the
// persisted per-subnet yield records for every staking validator.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/tao-yield-api/internal/apy"
	"github.com/yourorg/tao-yield-api/internal/chain"
	"github.com/yourorg/tao-yield-api/internal/model"
)

// lastStakeOffset is how many blocks behind the head the short-horizon
// reference sample is taken.
const lastStakeOffset = 5

// raoPerTao converts rao amounts to TAO for the emission projection.
const raoPerTao = 1e9

// Builder derives one validator's subnet yield record from chain
// samples taken at estimated historical block heights.
type Builder struct {
	sampler       *chain.Sampler
	blockInterval float64
}

// NewBuilder creates a Builder sampling through client. A non-positive
// blockInterval falls back to the chain default.
func NewBuilder(client chain.Client, blockInterval float64) *Builder {
	if blockInterval <= 0 {
		blockInterval = chain.DefaultBlockInterval
	}
	return &Builder{
		sampler:       chain.NewSampler(client),
		blockInterval: blockInterval,
	}
}

// BuildSubnetRecord samples the validator's past stake across every
// window and assembles the record persisted for (hotkey, netuid).
// Windows whose sample is unavailable keep nil stake, yield and APY
// fields. The window samples run concurrently; the record is complete
// when the call returns.
func (b *Builder) BuildSubnetRecord(ctx context.Context, hotkey string, netuid int, currentStake, emissionPerBlock, currentBlock int64, now time.Time) model.SubnetYield {
	record := model.SubnetYield{
		LatestStake: model.FormatStake(currentStake),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		refBlock := currentBlock - lastStakeOffset
		if refBlock < 1 {
			refBlock = 1
		}
		last := b.sampler.StakeAt(ctx, hotkey, netuid, refBlock)
		mu.Lock()
		record.LastStake = model.FormatStakePtr(last)
		mu.Unlock()
	}()

	for _, w := range model.Windows {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := now.Add(-w.Duration()).Unix()
			block := chain.EstimateBlock(currentBlock, now.Unix(), target, b.blockInterval)
			past := b.sampler.StakeAt(ctx, hotkey, netuid, block)

			mu.Lock()
			defer mu.Unlock()
			setWindowFields(&record, w, currentStake, past)
		}()
	}
	wg.Wait()

	if currentStake > 0 && emissionPerBlock > 0 {
		blocksPerDay := 24 * 60 * 60 / b.blockInterval
		dailyTao := float64(emissionPerBlock) * blocksPerDay / raoPerTao
		stakeTao := float64(currentStake) / raoPerTao
		rate := apy.EmissionAPY(dailyTao, stakeTao)
		record.EmissionApy = model.StrPtr(apy.FormatPercent(rate))
	}

	return record
}

func setWindowFields(record *model.SubnetYield, w model.Window, currentStake int64, past *int64) {
	var pastStr, yieldStr, apyStr *string
	if past != nil {
		pastStr = model.StrPtr(model.FormatStake(*past))
		yieldStr = model.StrPtr(model.FormatStake(apy.Yield(currentStake, *past)))
		if rate, ok := apy.WindowAPY(&currentStake, past, w.Duration()); ok {
			apyStr = model.StrPtr(apy.FormatPercent(rate))
		}
	}

	switch w {
	case model.Window1h:
		record.Stake1hAgo = pastStr
		record.HourlyYield = yieldStr
		record.HourlyApy = apyStr
	case model.Window24h:
		record.Stake24hAgo = pastStr
		record.DailyYield = yieldStr
		record.DailyApy = apyStr
	case model.Window7d:
		record.Stake7dAgo = pastStr
		record.WeeklyYield = yieldStr
		record.WeeklyApy = apyStr
	case model.Window30d:
		record.Stake30dAgo = pastStr
		record.MonthlyYield = yieldStr
		record.MonthlyApy = apyStr
	}
}
