// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package escrow

import (
	"context"
	"sync"
	"time"

	"github.com/adxyz/admarket/pkg/errs"
	"github.com/adxyz/admarket/pkg/event"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/ledger"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/adxyz/admarket/pkg/market"
	"github.com/adxyz/admarket/pkg/metric"
	"github.com/adxyz/admarket/pkg/storage"
)

// Vault coordinates escrow funding and settlement against the slot
// registry. The mutex serializes all escrow operations, so a release and a
// refund racing on the same record observe each other's latch: across any
// interleaving, custody moves at most once.
type Vault struct {
	mu      sync.Mutex
	store   *storage.Store
	ledger  *ledger.Ledger
	slots   *market.Registry
	bus     *event.Bus
	metrics *metric.Metrics
	log     log.Logger
}

// NewVault creates an escrow vault. metrics may be nil.
func NewVault(store *storage.Store, l *ledger.Ledger, slots *market.Registry, bus *event.Bus, m *metric.Metrics, logger log.Logger) *Vault {
	return &Vault{
		store:   store,
		ledger:  l,
		slots:   slots,
		bus:     bus,
		metrics: m,
		log:     logger,
	}
}

// Fund moves amount from the advertiser into escrow custody and records the
// slot's owner as the release recipient. The publisher is snapshotted at
// funding time: a later ownership change must not redirect funds.
func (v *Vault) Fund(ctx context.Context, advertiser, slotKey ids.ID, amount uint64) (*Escrow, ids.ID, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount == 0 {
		return nil, ids.Empty, errs.ErrInvalidAmount
	}

	slot, err := v.slots.GetSlot(slotKey)
	if err != nil {
		return nil, ids.Empty, err
	}

	key := Key(advertiser, slotKey)
	exists, err := v.store.Has(escrowDBKey(key))
	if err != nil {
		return nil, ids.Empty, err
	}
	if exists {
		return nil, ids.Empty, errs.ErrEscrowExists
	}

	if err := v.ledger.Transfer(advertiser, key, amount); err != nil {
		return nil, ids.Empty, err
	}

	esc := &Escrow{
		Amount:     amount,
		Advertiser: advertiser,
		Publisher:  slot.Owner,
		IsReleased: false,
		SlotKey:    slotKey,
	}
	if err := v.store.PutJSON(escrowDBKey(key), esc); err != nil {
		// Undo the custody transfer so the failed operation has no effect.
		if rerr := v.ledger.Transfer(key, advertiser, amount); rerr != nil {
			v.log.Error("failed to reverse custody transfer", "escrow", key, "error", rerr)
		}
		return nil, ids.Empty, err
	}

	v.bus.Publish(event.EscrowCreated{
		EscrowKey:  key,
		Advertiser: advertiser,
		Publisher:  esc.Publisher,
		Amount:     amount,
	})
	if v.metrics != nil {
		v.metrics.EscrowsFunded.Inc()
	}
	v.log.Info("escrow funded",
		"escrow", key, "advertiser", advertiser, "publisher", esc.Publisher, "amount", amount)

	return esc, key, nil
}

// Release settles the escrow toward the publisher. Requires the slot's
// lifecycle to have concluded and the slot owner to still match the
// snapshotted publisher. Authorized callers are the publisher and the
// advertiser; release rights are symmetric, refund rights are not.
func (v *Vault) Release(ctx context.Context, key ids.ID, caller ids.ID) error {
	start := time.Now()
	v.mu.Lock()
	defer v.mu.Unlock()

	esc, err := v.get(key)
	if err != nil {
		return err
	}
	if esc.Amount == 0 {
		return errs.ErrInvalidEscrow
	}
	if esc.IsReleased {
		return errs.ErrEscrowAlreadyReleased
	}

	slot, err := v.slots.GetSlot(esc.SlotKey)
	if err != nil {
		return err
	}
	if slot.IsActive {
		return errs.ErrSlotActive
	}
	if slot.Owner != esc.Publisher {
		return errs.ErrUnauthorized
	}
	if caller != esc.Publisher && caller != esc.Advertiser {
		return errs.ErrUnauthorized
	}

	if err := v.settle(key, esc, esc.Publisher); err != nil {
		return err
	}

	v.bus.Publish(event.EscrowReleased{
		EscrowKey: key,
		Publisher: esc.Publisher,
		Amount:    esc.Amount,
	})
	if v.metrics != nil {
		v.metrics.EscrowsReleased.Inc()
		v.metrics.SettleLatency.Observe(time.Since(start).Seconds())
	}
	v.log.Info("escrow released",
		"escrow", key, "publisher", esc.Publisher, "amount", esc.Amount)

	return nil
}

// Refund settles the escrow back to the advertiser. Only the funder may
// reclaim, and unlike Release the slot may still be active: the advertiser
// can always walk away before settlement.
func (v *Vault) Refund(ctx context.Context, key ids.ID, caller ids.ID) error {
	start := time.Now()
	v.mu.Lock()
	defer v.mu.Unlock()

	esc, err := v.get(key)
	if err != nil {
		return err
	}
	if esc.Amount == 0 {
		return errs.ErrInvalidEscrow
	}
	if esc.IsReleased {
		return errs.ErrEscrowAlreadyReleased
	}
	if caller != esc.Advertiser {
		return errs.ErrUnauthorized
	}

	if err := v.settle(key, esc, esc.Advertiser); err != nil {
		return err
	}

	v.bus.Publish(event.EscrowRefunded{
		EscrowKey:  key,
		Advertiser: esc.Advertiser,
		Amount:     esc.Amount,
	})
	if v.metrics != nil {
		v.metrics.EscrowsRefunded.Inc()
		v.metrics.SettleLatency.Observe(time.Since(start).Seconds())
	}
	v.log.Info("escrow refunded",
		"escrow", key, "advertiser", esc.Advertiser, "amount", esc.Amount)

	return nil
}

// settle executes the exactly-once custody transfer and flips the latch.
// Callers hold v.mu and have verified every precondition. The persisted
// record keeps Amount for the event payloads; only the stored copy is
// zeroed.
func (v *Vault) settle(key ids.ID, esc *Escrow, recipient ids.ID) error {
	if v.ledger.Balance(key) < esc.Amount {
		// Custody below the recorded amount means the ledger and the escrow
		// record diverged. Nothing we can do here but refuse and alert.
		v.log.Error("custody balance below recorded amount",
			"escrow", key, "custody", v.ledger.Balance(key), "recorded", esc.Amount)
		return errs.ErrInsufficientFunds
	}

	if err := v.ledger.Transfer(key, recipient, esc.Amount); err != nil {
		return err
	}

	settled := &Escrow{
		Amount:     0,
		Advertiser: esc.Advertiser,
		Publisher:  esc.Publisher,
		IsReleased: true,
		SlotKey:    esc.SlotKey,
	}
	if err := v.store.PutJSON(escrowDBKey(key), settled); err != nil {
		// Undo the transfer so no state is observable where funds moved but
		// the latch did not flip.
		if rerr := v.ledger.Transfer(recipient, key, esc.Amount); rerr != nil {
			v.log.Error("failed to reverse settlement transfer", "escrow", key, "error", rerr)
		}
		return err
	}
	return nil
}

// Get loads an escrow record by key.
func (v *Vault) Get(key ids.ID) (*Escrow, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.get(key)
}

func (v *Vault) get(key ids.ID) (*Escrow, error) {
	esc := &Escrow{}
	ok, err := v.store.GetJSON(escrowDBKey(key), esc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrEscrowNotFound
	}
	return esc, nil
}
