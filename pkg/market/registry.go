// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/adxyz/admarket/pkg/errs"
	"github.com/adxyz/admarket/pkg/event"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/adxyz/admarket/pkg/metric"
	"github.com/adxyz/admarket/pkg/storage"
)

// Registry manages ad slot and creative records. All operations execute as
// atomic transactions: every precondition is checked before the first
// mutation, and the mutex serializes concurrent operations so two bids can
// never both read the same stale highest bid.
type Registry struct {
	mu      sync.Mutex
	store   *storage.Store
	bus     *event.Bus
	clock   Clock
	metrics *metric.Metrics
	log     log.Logger
}

// NewRegistry creates a slot registry. metrics may be nil.
func NewRegistry(store *storage.Store, bus *event.Bus, clock Clock, m *metric.Metrics, logger log.Logger) *Registry {
	return &Registry{
		store:   store,
		bus:     bus,
		clock:   clock,
		metrics: m,
		log:     logger,
	}
}

// CreateSlotParams are the caller-supplied attributes of a new slot.
type CreateSlotParams struct {
	Owner        ids.ID `json:"owner"`
	SlotID       string `json:"slot_id"`
	Price        uint64 `json:"price"`
	Duration     uint64 `json:"duration"`
	IsAuction    bool   `json:"is_auction"`
	AuctionEnd   int64  `json:"auction_end"`
	Category     string `json:"category"`
	AudienceSize uint64 `json:"audience_size"`
}

// CreateSlot lists a new ad slot owned by the caller. Auction slots must
// end strictly in the future. For fixed-price slots the owner is recorded
// as the highest bidder sentinel until a real buyer appears.
func (r *Registry) CreateSlot(ctx context.Context, p CreateSlotParams) (*AdSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.IsAuction && p.AuctionEnd <= r.clock.Now().Unix() {
		return nil, errs.ErrAuctionEndInPast
	}

	key := SlotKey(p.Owner, p.SlotID)
	exists, err := r.store.Has(slotDBKey(key))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.ErrSlotExists
	}

	slot := &AdSlot{
		Owner:        p.Owner,
		SlotID:       p.SlotID,
		Price:        p.Price,
		Duration:     p.Duration,
		IsAuction:    p.IsAuction,
		IsActive:     true,
		Category:     p.Category,
		AudienceSize: p.AudienceSize,
	}
	if p.IsAuction {
		slot.AuctionEnd = p.AuctionEnd
		slot.HighestBidder = ids.Empty
	} else {
		slot.HighestBidder = p.Owner
	}

	if err := r.store.PutJSON(slotDBKey(key), slot); err != nil {
		return nil, err
	}

	r.bus.Publish(event.SlotCreated{SlotID: slot.SlotID, Owner: slot.Owner})
	if r.metrics != nil {
		r.metrics.SlotsCreated.Inc()
	}
	r.log.Info("slot created",
		"slot", slot.SlotID, "owner", slot.Owner, "auction", slot.IsAuction)

	return slot, nil
}

// GetSlot loads a slot by record key.
func (r *Registry) GetSlot(key ids.ID) (*AdSlot, error) {
	slot := &AdSlot{}
	ok, err := r.store.GetJSON(slotDBKey(key), slot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrSlotNotFound
	}
	return slot, nil
}

// ListSlots returns every slot record, in key order.
func (r *Registry) ListSlots() ([]*AdSlot, error) {
	iter := r.store.NewIteratorWithPrefix(slotPrefix)
	defer iter.Release()

	var slots []*AdSlot
	for iter.Next() {
		slot := &AdSlot{}
		ok, err := r.store.GetJSON(iter.Key(), slot)
		if err != nil {
			return nil, err
		}
		if ok {
			slots = append(slots, slot)
		}
	}
	return slots, iter.Error()
}

// BuyFixed purchases a fixed-price slot outright, ending its lifecycle and
// recording the buyer.
func (r *Registry) BuyFixed(ctx context.Context, key ids.ID, buyer ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.GetSlot(key)
	if err != nil {
		return err
	}
	if slot.IsAuction {
		return errs.ErrInvalidPurchaseType
	}
	if !slot.IsActive {
		return errs.ErrSlotNotActive
	}

	slot.IsActive = false
	slot.HighestBidder = buyer
	if err := r.store.PutJSON(slotDBKey(key), slot); err != nil {
		return err
	}

	r.bus.Publish(event.SlotPurchased{SlotID: slot.SlotID, Buyer: buyer})
	if r.metrics != nil {
		r.metrics.SlotsPurchased.Inc()
	}
	r.log.Info("slot purchased", "slot", slot.SlotID, "buyer", buyer)

	return nil
}

// PlaceBid records a new highest bid on an auction slot. The bid must be
// strictly greater than the current high bid; equal bids are rejected so
// ties are never ambiguous.
func (r *Registry) PlaceBid(ctx context.Context, key ids.ID, bidder ids.ID, amount uint64) error {
	start := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.GetSlot(key)
	if err != nil {
		return err
	}
	if !slot.IsAuction {
		return errs.ErrInvalidPurchaseType
	}
	if !slot.IsActive {
		return errs.ErrSlotNotActive
	}
	if r.clock.Now().Unix() >= slot.AuctionEnd {
		return errs.ErrAuctionEnded
	}
	if amount <= slot.HighestBid {
		return errs.ErrBidTooLow
	}

	slot.HighestBid = amount
	slot.HighestBidder = bidder
	if err := r.store.PutJSON(slotDBKey(key), slot); err != nil {
		return err
	}

	r.bus.Publish(event.BidPlaced{SlotID: slot.SlotID, Bidder: bidder, Amount: amount})
	if r.metrics != nil {
		r.metrics.BidsPlaced.Inc()
		r.metrics.BidLatency.Observe(time.Since(start).Seconds())
	}
	r.log.Info("bid placed", "slot", slot.SlotID, "bidder", bidder, "amount", amount)

	return nil
}

// CloseAuction finalizes an auction whose deadline has passed. Callable by
// anyone, so an unresponsive owner cannot hold the winner hostage. The
// recorded highest bidder (possibly the no-bid sentinel) becomes the winner.
func (r *Registry) CloseAuction(ctx context.Context, key ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.GetSlot(key)
	if err != nil {
		return err
	}
	if !slot.IsAuction {
		return errs.ErrInvalidPurchaseType
	}
	if !slot.IsActive {
		return errs.ErrSlotNotActive
	}
	if r.clock.Now().Unix() < slot.AuctionEnd {
		return errs.ErrAuctionNotEnded
	}

	slot.IsActive = false
	if err := r.store.PutJSON(slotDBKey(key), slot); err != nil {
		return err
	}

	r.bus.Publish(event.AuctionClosed{SlotID: slot.SlotID, Winner: slot.HighestBidder})
	if r.metrics != nil {
		r.metrics.AuctionsClosed.Inc()
	}
	r.log.Info("auction closed",
		"slot", slot.SlotID, "winner", slot.HighestBidder, "bid", slot.HighestBid)

	return nil
}

// Deactivate lets the owner pull an active slot off the market.
func (r *Registry) Deactivate(ctx context.Context, key ids.ID, caller ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.GetSlot(key)
	if err != nil {
		return err
	}
	if !slot.IsActive {
		return errs.ErrSlotNotActive
	}
	if slot.Owner != caller {
		return errs.ErrUnauthorized
	}

	slot.IsActive = false
	if err := r.store.PutJSON(slotDBKey(key), slot); err != nil {
		return err
	}

	r.log.Info("slot deactivated", "slot", slot.SlotID, "owner", slot.Owner)
	return nil
}

// IncrementView bumps the slot's view counter. Intentionally
// unauthenticated: it is an informational counter, not business state.
// Saturates instead of wrapping.
func (r *Registry) IncrementView(ctx context.Context, key ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, err := r.GetSlot(key)
	if err != nil {
		return err
	}
	if slot.ViewCount < math.MaxUint64 {
		slot.ViewCount++
	}
	return r.store.PutJSON(slotDBKey(key), slot)
}

// CreateAdParams are the caller-supplied attributes of a new creative.
type CreateAdParams struct {
	Owner    ids.ID `json:"owner"`
	AdID     string `json:"ad_id"`
	MediaCID string `json:"media_cid"`
	SlotKey  ids.ID `json:"slot_key"`
}

// CreateAd registers a creative targeting an existing slot. Ads are
// immutable once created.
func (r *Registry) CreateAd(ctx context.Context, p CreateAdParams) (*Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.GetSlot(p.SlotKey); err != nil {
		return nil, err
	}

	key := AdKey(p.Owner, p.AdID)
	exists, err := r.store.Has(adDBKey(key))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.ErrAdExists
	}

	ad := &Ad{
		Owner:    p.Owner,
		AdID:     p.AdID,
		MediaCID: p.MediaCID,
		SlotKey:  p.SlotKey,
	}
	if err := r.store.PutJSON(adDBKey(key), ad); err != nil {
		return nil, err
	}

	r.bus.Publish(event.AdCreated{AdID: ad.AdID, Owner: ad.Owner})
	if r.metrics != nil {
		r.metrics.AdsCreated.Inc()
	}
	r.log.Info("ad created", "ad", ad.AdID, "owner", ad.Owner, "slot_key", ad.SlotKey)

	return ad, nil
}

// GetAd loads a creative by record key.
func (r *Registry) GetAd(key ids.ID) (*Ad, error) {
	ad := &Ad{}
	ok, err := r.store.GetJSON(adDBKey(key), ad)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrAdNotFound
	}
	return ad, nil
}
