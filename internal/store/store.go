// Package store persists validator yield documents and subnet metadata.
// The contract is a document store with atomic partial upsert by key:
// the sweep job is the sole writer of yield data, the metadata job the
// sole writer of identities, and the read API a pure projector. Writers
// may overlap; last writer per (hotkey) or (hotkey, subnet) field wins.
package store

import (
	"context"

	"github.com/yourorg/tao-yield-api/internal/model"
)

// Store is the persistence capability consumed by the jobs and the API.
type Store interface {
	// UpsertValidatorMeta merges a validator's identity fields into its
	// document, creating it when absent. Subnet yield fields are left
	// untouched.
	UpsertValidatorMeta(ctx context.Context, meta model.ValidatorMeta, updatedAt string) error

	// UpsertSubnetYield merges one subnet's yield record into the
	// validator's document. Records for subnets the validator has since
	// exited are never pruned here; they stay until overwritten. This
	// retention gap is deliberate.
	UpsertSubnetYield(ctx context.Context, hotkey string, netuid int, y model.SubnetYield, updatedAt string) error

	// GetValidator fetches one validator document by hotkey. The bool
	// reports whether the document exists.
	GetValidator(ctx context.Context, hotkey string) (model.ValidatorDoc, bool, error)

	// ListValidators returns every validator document.
	ListValidators(ctx context.Context) ([]model.ValidatorDoc, error)

	// UpsertSubnet merges a subnet's name/symbol record.
	UpsertSubnet(ctx context.Context, info model.SubnetInfo) error

	// ListSubnets returns every subnet metadata record.
	ListSubnets(ctx context.Context) ([]model.SubnetInfo, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
