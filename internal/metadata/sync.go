// Package metadata refreshes validator identity records from the
// chain's delegate registry. It only touches identity fields; yield
// records written by the sweep are left untouched by the merge.
package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/tao-yield-api/internal/chain"
	"github.com/yourorg/tao-yield-api/internal/model"
	"github.com/yourorg/tao-yield-api/internal/store"
)

// Syncer copies the chain's delegate registry into validator metadata.
type Syncer struct {
	client chain.Client
	store  store.Store
}

// NewSyncer wires a metadata Syncer.
func NewSyncer(client chain.Client, st store.Store) *Syncer {
	return &Syncer{client: client, store: st}
}

// Run performs one metadata sync pass. A failing upsert skips that
// validator and continues; only a failed registry fetch aborts the
// pass.
func (s *Syncer) Run(ctx context.Context) error {
	delegates, err := s.client.Delegates(ctx)
	if err != nil {
		return fmt.Errorf("fetching delegate registry: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	synced := 0
	for i, d := range delegates {
		meta := buildMeta(i, d)
		if err := s.store.UpsertValidatorMeta(ctx, meta, now); err != nil {
			logrus.WithError(err).WithField("hotkey", d.Hotkey).Error("Failed to upsert validator metadata")
			continue
		}
		synced++
	}

	logrus.WithFields(logrus.Fields{
		"delegates": len(delegates),
		"synced":    synced,
	}).Info("Validator metadata sync complete")
	return nil
}

// buildMeta maps one delegate registry entry onto the persisted
// identity record. Validators without an on-chain identity get a
// placeholder name derived from their hotkey.
func buildMeta(id int, d chain.Delegate) model.ValidatorMeta {
	verified := d.Identity.Display != ""
	meta := model.ValidatorMeta{
		ID:            id,
		Hotkey:        d.Hotkey,
		Coldkey:       d.Coldkey,
		Take:          fmt.Sprintf("%.16f", d.Take),
		Verified:      verified,
		VerifiedBadge: verified,
		Name:          d.Identity.Display,
	}
	if meta.Name == "" {
		meta.Name = "Validator " + shortHotkey(d.Hotkey)
	}
	if d.Identity.Image != "" {
		meta.Logo = model.StrPtr(d.Identity.Image)
	}
	if d.Identity.Web != "" {
		meta.URL = model.StrPtr(d.Identity.Web)
	}
	if d.Identity.Twitter != "" {
		meta.Twitter = model.StrPtr(d.Identity.Twitter)
	}
	return meta
}

func shortHotkey(hotkey string) string {
	if len(hotkey) <= 8 {
		return hotkey
	}
	return hotkey[:8]
}
