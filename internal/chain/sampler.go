package chain

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Sampler answers "how much stake did this participant hold in this
// subnet at this block". Chain-layer failures, timeouts, and missing
// participants all resolve to an unavailable sample (nil). That is a
// normal outcome, not an error: validators de-register from subnets
// between samples. The sampler never retries; retries belong to the
// caller's scheduling cadence.
type Sampler struct {
	client Client
}

// NewSampler wraps a chain client.
func NewSampler(client Client) *Sampler {
	return &Sampler{client: client}
}

// StakeAt returns the participant's stake in rao at the given block, or
// nil when no data is available for that point.
func (s *Sampler) StakeAt(ctx context.Context, hotkey string, netuid int, block int64) *int64 {
	entries, err := s.client.StakeHolders(ctx, netuid, block)
	if err != nil {
		logrus.Debugf("No stake data for subnet %d at block %d: %v", netuid, block, err)
		return nil
	}
	for _, entry := range entries {
		if entry.Hotkey == hotkey {
			stake := entry.Stake
			return &stake
		}
	}
	return nil
}
