// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event defines the marketplace notification events consumed by
// off-chain indexers. Field sets are part of the external interface and must
// stay compatible.
package event

import "github.com/adxyz/admarket/pkg/ids"

// Type identifies an event variant.
type Type string

const (
	TypeSlotCreated    Type = "SlotCreated"
	TypeAdCreated      Type = "AdCreated"
	TypeSlotPurchased  Type = "SlotPurchased"
	TypeBidPlaced      Type = "BidPlaced"
	TypeAuctionClosed  Type = "AuctionClosed"
	TypeEscrowCreated  Type = "EscrowCreated"
	TypeEscrowReleased Type = "EscrowReleased"
	TypeEscrowRefunded Type = "EscrowRefunded"
)

// Event is implemented by every marketplace notification.
type Event interface {
	Type() Type
}

// SlotCreated is emitted when a seller lists a new ad slot.
type SlotCreated struct {
	SlotID string `json:"slot_id"`
	Owner  ids.ID `json:"owner"`
}

func (SlotCreated) Type() Type { return TypeSlotCreated }

// AdCreated is emitted when a creative is bound to a slot.
type AdCreated struct {
	AdID  string `json:"ad_id"`
	Owner ids.ID `json:"owner"`
}

func (AdCreated) Type() Type { return TypeAdCreated }

// SlotPurchased is emitted on a fixed-price purchase.
type SlotPurchased struct {
	SlotID string `json:"slot_id"`
	Buyer  ids.ID `json:"buyer"`
}

func (SlotPurchased) Type() Type { return TypeSlotPurchased }

// BidPlaced is emitted whenever a bid becomes the new highest bid.
type BidPlaced struct {
	SlotID string `json:"slot_id"`
	Bidder ids.ID `json:"bidder"`
	Amount uint64 `json:"amount"`
}

func (BidPlaced) Type() Type { return TypeBidPlaced }

// AuctionClosed is emitted when an auction is finalized. Winner is the zero
// ID when no bid was placed.
type AuctionClosed struct {
	SlotID string `json:"slot_id"`
	Winner ids.ID `json:"winner"`
}

func (AuctionClosed) Type() Type { return TypeAuctionClosed }

// EscrowCreated is emitted when an advertiser funds an escrow.
type EscrowCreated struct {
	EscrowKey  ids.ID `json:"escrow_key"`
	Advertiser ids.ID `json:"advertiser"`
	Publisher  ids.ID `json:"publisher"`
	Amount     uint64 `json:"amount"`
}

func (EscrowCreated) Type() Type { return TypeEscrowCreated }

// EscrowReleased is emitted when custody moves to the publisher.
type EscrowReleased struct {
	EscrowKey ids.ID `json:"escrow_key"`
	Publisher ids.ID `json:"publisher"`
	Amount    uint64 `json:"amount"`
}

func (EscrowReleased) Type() Type { return TypeEscrowReleased }

// EscrowRefunded is emitted when custody moves back to the advertiser.
type EscrowRefunded struct {
	EscrowKey  ids.ID `json:"escrow_key"`
	Advertiser ids.ID `json:"advertiser"`
	Amount     uint64 `json:"amount"`
}

func (EscrowRefunded) Type() Type { return TypeEscrowRefunded }
