// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package market owns the ad-slot and creative registries: listing,
// fixed-price purchase, auction bidding, closing, and deactivation.
package market

import "github.com/adxyz/admarket/pkg/ids"

// AdSlot represents one unit of advertising inventory. A slot is either
// fixed-price or an auction; the mode is immutable after creation. IsActive
// transitions true to false exactly once and never back.
type AdSlot struct {
	Owner         ids.ID `json:"owner"`
	SlotID        string `json:"slot_id"`
	Price         uint64 `json:"price"`
	Duration      uint64 `json:"duration"`
	IsAuction     bool   `json:"is_auction"`
	AuctionEnd    int64  `json:"auction_end"`
	HighestBid    uint64 `json:"highest_bid"`
	HighestBidder ids.ID `json:"highest_bidder"`
	IsActive      bool   `json:"is_active"`
	ViewCount     uint64 `json:"view_count"`
	Category      string `json:"category"`
	AudienceSize  uint64 `json:"audience_size"`
}

// Key returns the slot's record key.
func (s *AdSlot) Key() ids.ID {
	return SlotKey(s.Owner, s.SlotID)
}

// SlotKey derives the record key for an (owner, slot_id) pair.
func SlotKey(owner ids.ID, slotID string) ids.ID {
	return ids.Derive([]byte("adslot"), owner.Bytes(), []byte(slotID))
}

// Ad is a creative bound to a slot. Immutable once created.
type Ad struct {
	Owner    ids.ID `json:"owner"`
	AdID     string `json:"ad_id"`
	MediaCID string `json:"media_cid"`
	SlotKey  ids.ID `json:"slot_key"`
}

// Key returns the ad's record key.
func (a *Ad) Key() ids.ID {
	return AdKey(a.Owner, a.AdID)
}

// AdKey derives the record key for an (owner, ad_id) pair.
func AdKey(owner ids.ID, adID string) ids.ID {
	return ids.Derive([]byte("ad"), owner.Bytes(), []byte(adID))
}

var (
	slotPrefix = []byte("adslot/")
	adPrefix   = []byte("ad/")
)

func slotDBKey(key ids.ID) []byte {
	return append(append([]byte{}, slotPrefix...), key.Bytes()...)
}

func adDBKey(key ids.ID) []byte {
	return append(append([]byte{}, adPrefix...), key.Bytes()...)
}
