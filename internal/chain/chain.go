// Package chain provides read-only access to the staking network's RPC
// node: current block height, subnet enumeration, per-block stake
// listings, emission figures, and the delegate registry. Every call is
// independently timeout-bounded so one unresponsive query cannot stall
// a whole sweep.
package chain

import "context"

// StakeEntry is one participant's stake within a subnet at a given
// block, in rao (the smallest integer unit).
type StakeEntry struct {
	Hotkey string
	Stake  int64
}

// Identity carries a delegate's on-chain identity record. Empty fields
// mean the delegate has not published that attribute.
type Identity struct {
	Display string
	Web     string
	Image   string
	Twitter string
}

// Delegate is one entry of the network's delegate registry.
type Delegate struct {
	Hotkey   string
	Coldkey  string
	Take     float64
	Identity Identity
}

// Client is the capability boundary to the chain. Implementations must
// be safe for concurrent use; all methods are read-only and idempotent.
type Client interface {
	// CurrentBlock returns the chain's current block height.
	CurrentBlock(ctx context.Context) (int64, error)

	// Subnets enumerates the network's subnet identifiers.
	Subnets(ctx context.Context) ([]int, error)

	// StakeHolders lists every participant with stake in a subnet at a
	// given block height.
	StakeHolders(ctx context.Context, netuid int, block int64) ([]StakeEntry, error)

	// SubnetEmission returns a subnet's per-block emission in rao.
	SubnetEmission(ctx context.Context, netuid int) (int64, error)

	// Delegates returns the delegate registry with identities merged in.
	Delegates(ctx context.Context) ([]Delegate, error)
}
