// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics aggregates read-side marketplace statistics from the
// event stream. Informational only: nothing here feeds back into slot or
// escrow state.
package analytics

import (
	"sync"
	"sync/atomic"

	"github.com/adxyz/admarket/pkg/event"
	"github.com/shopspring/decimal"
)

// Tracker tracks marketplace activity counters and per-publisher revenue.
type Tracker struct {
	// Real-time counters
	TotalSlots     atomic.Uint64
	TotalAds       atomic.Uint64
	TotalBids      atomic.Uint64
	TotalSales     atomic.Uint64
	TotalAuctions  atomic.Uint64
	TotalSettled   atomic.Uint64
	TotalRefunded  atomic.Uint64
	VolumeSettled  atomic.Uint64 // base units released to publishers
	VolumeRefunded atomic.Uint64 // base units returned to advertisers

	mu         sync.RWMutex
	publishers map[string]*PublisherStats
}

// PublisherStats tracks per-publisher settlement revenue.
type PublisherStats struct {
	PublisherID   string
	Settlements   uint64
	Revenue       uint64
	AvgSettlement decimal.Decimal
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		publishers: make(map[string]*PublisherStats),
	}
}

// Consume updates counters from a marketplace event. Safe for concurrent
// use; typically run from a bus subscription goroutine.
func (t *Tracker) Consume(ev event.Event) {
	switch e := ev.(type) {
	case event.SlotCreated:
		t.TotalSlots.Add(1)
	case event.AdCreated:
		t.TotalAds.Add(1)
	case event.BidPlaced:
		t.TotalBids.Add(1)
	case event.SlotPurchased:
		t.TotalSales.Add(1)
	case event.AuctionClosed:
		t.TotalAuctions.Add(1)
	case event.EscrowReleased:
		t.TotalSettled.Add(1)
		t.VolumeSettled.Add(e.Amount)
		t.recordSettlement(e.Publisher.String(), e.Amount)
	case event.EscrowRefunded:
		t.TotalRefunded.Add(1)
		t.VolumeRefunded.Add(e.Amount)
	}
}

func (t *Tracker) recordSettlement(publisherID string, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.publishers[publisherID]
	if !ok {
		stats = &PublisherStats{PublisherID: publisherID}
		t.publishers[publisherID] = stats
	}
	stats.Settlements++
	stats.Revenue += amount
	stats.AvgSettlement = decimal.NewFromUint64(stats.Revenue).
		Div(decimal.NewFromUint64(stats.Settlements))
}

// Publisher returns a snapshot of one publisher's stats.
func (t *Tracker) Publisher(publisherID string) (PublisherStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats, ok := t.publishers[publisherID]
	if !ok {
		return PublisherStats{}, false
	}
	return *stats, true
}

// Snapshot summarizes the global counters.
type Snapshot struct {
	Slots          uint64 `json:"slots"`
	Ads            uint64 `json:"ads"`
	Bids           uint64 `json:"bids"`
	Sales          uint64 `json:"sales"`
	Auctions       uint64 `json:"auctions"`
	Settled        uint64 `json:"settled"`
	Refunded       uint64 `json:"refunded"`
	VolumeSettled  uint64 `json:"volume_settled"`
	VolumeRefunded uint64 `json:"volume_refunded"`
}

// Stats returns the current global counters.
func (t *Tracker) Stats() Snapshot {
	return Snapshot{
		Slots:          t.TotalSlots.Load(),
		Ads:            t.TotalAds.Load(),
		Bids:           t.TotalBids.Load(),
		Sales:          t.TotalSales.Load(),
		Auctions:       t.TotalAuctions.Load(),
		Settled:        t.TotalSettled.Load(),
		Refunded:       t.TotalRefunded.Load(),
		VolumeSettled:  t.VolumeSettled.Load(),
		VolumeRefunded: t.VolumeRefunded.Load(),
	}
}
