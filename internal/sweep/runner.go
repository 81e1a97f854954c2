package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/tao-yield-api/internal/chain"
	"github.com/yourorg/tao-yield-api/internal/circuitbreaker"
	"github.com/yourorg/tao-yield-api/internal/store"
)

// Runner drives one full sweep: enumerate subnets, list their stake
// holders at the chain head, build each validator's yield record and
// upsert it. Record building for individual validators fans out over a
// worker pool; a failing validator only loses its own record.
type Runner struct {
	client  chain.Client
	store   store.Store
	breaker *circuitbreaker.CircuitBreaker
	builder *Builder
	workers int
}

// NewRunner wires a sweep Runner. workers bounds the number of
// concurrent record builds.
func NewRunner(client chain.Client, st store.Store, breaker *circuitbreaker.CircuitBreaker, blockInterval float64, workers int) *Runner {
	if workers <= 0 {
		workers = 8
	}
	return &Runner{
		client:  client,
		store:   st,
		breaker: breaker,
		builder: NewBuilder(client, blockInterval),
		workers: workers,
	}
}

// Run performs a single sweep over every subnet. It returns an error
// only when the sweep cannot start at all; per-subnet and
// per-validator failures are logged and skipped. Overlapping runs are
// tolerated: records are upserted field by field, so the newest write
// per subnet wins.
func (r *Runner) Run(ctx context.Context) error {
	tracer := otel.Tracer("sweep")
	ctx, span := tracer.Start(ctx, "sweep.run")
	defer span.End()

	start := time.Now()
	defer func() {
		sweepDuration.Observe(time.Since(start).Seconds())
	}()

	if err := r.breaker.Allow(); err != nil {
		logrus.Warn("Skipping sweep: circuit breaker open")
		return err
	}

	currentBlock, err := r.client.CurrentBlock(ctx)
	if err != nil {
		r.breaker.RecordFailure(err.Error())
		chainErrors.Inc()
		return err
	}
	r.breaker.RecordSuccess()

	subnets, err := r.client.Subnets(ctx)
	if err != nil {
		r.breaker.RecordFailure(err.Error())
		chainErrors.Inc()
		return err
	}
	r.breaker.RecordSuccess()

	span.SetAttributes(
		attribute.Int64("chain.block", currentBlock),
		attribute.Int("chain.subnets", len(subnets)),
	)
	logrus.WithFields(logrus.Fields{
		"block":   currentBlock,
		"subnets": len(subnets),
	}).Info("Starting yield sweep")

	now := time.Now().UTC()
	pool := pond.NewPool(r.workers)
	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, netuid := range subnets {
		r.sweepSubnet(groupCtx, group, netuid, currentBlock, now)
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logrus.WithError(err).Warn("Sweep worker group reported an error")
	}
	pool.StopAndWait()

	logrus.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("Yield sweep complete")
	return nil
}

// sweepSubnet lists one subnet's stake holders and schedules a record
// build per staking validator. Chain failures mark the breaker and
// skip the subnet for this sweep.
func (r *Runner) sweepSubnet(ctx context.Context, group pond.TaskGroup, netuid int, currentBlock int64, now time.Time) {
	if err := r.breaker.Allow(); err != nil {
		return
	}

	holders, err := r.client.StakeHolders(ctx, netuid, currentBlock)
	if err != nil {
		r.breaker.RecordFailure(err.Error())
		chainErrors.Inc()
		logrus.WithError(err).WithField("netuid", netuid).Warn("Failed to list stake holders; skipping subnet")
		return
	}
	r.breaker.RecordSuccess()

	// Emission is best effort: without it the record simply carries no
	// emission projection.
	emissionPerBlock, err := r.client.SubnetEmission(ctx, netuid)
	if err != nil {
		chainErrors.Inc()
		logrus.WithError(err).WithField("netuid", netuid).Debug("Failed to fetch subnet emission")
		emissionPerBlock = 0
	}

	for _, holder := range holders {
		if holder.Stake <= 0 {
			continue
		}
		holder := holder
		group.Submit(func() {
			if err := ctx.Err(); err != nil {
				return
			}
			r.processValidator(ctx, holder, netuid, emissionPerBlock, currentBlock, now)
		})
	}
}

func (r *Runner) processValidator(ctx context.Context, holder chain.StakeEntry, netuid int, emissionPerBlock, currentBlock int64, now time.Time) {
	record := r.builder.BuildSubnetRecord(ctx, holder.Hotkey, netuid, holder.Stake, emissionPerBlock, currentBlock, now)
	if err := r.store.UpsertSubnetYield(ctx, holder.Hotkey, netuid, record, now.Format(time.RFC3339)); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"hotkey": holder.Hotkey,
			"netuid": netuid,
		}).Error("Failed to persist subnet yield record")
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		return
	}
	recordsUpdated.Inc()
}
