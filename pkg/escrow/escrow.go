// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package escrow custodies advertiser funds pending a release/refund
// decision and enforces the at-most-once settlement invariant.
package escrow

import "github.com/adxyz/admarket/pkg/ids"

// Escrow custodies funds for one advertiser-slot pairing. IsReleased is a
// latch: it transitions false to true exactly once, on release or refund,
// and Amount is forced to zero in the same transaction. The record's key
// doubles as its custody account on the ledger.
type Escrow struct {
	Amount     uint64 `json:"amount"`
	Advertiser ids.ID `json:"advertiser"`
	Publisher  ids.ID `json:"publisher"`
	IsReleased bool   `json:"is_released"`
	SlotKey    ids.ID `json:"slot_key"`
}

// Key derives the escrow record key for an (advertiser, slot) pair. The
// derivation guarantees at most one escrow per funding pair; a new funding
// event requires a new pair.
func Key(advertiser, slotKey ids.ID) ids.ID {
	return ids.Derive([]byte("escrow"), advertiser.Bytes(), slotKey.Bytes())
}

var escrowPrefix = []byte("escrow/")

func escrowDBKey(key ids.ID) []byte {
	return append(append([]byte{}, escrowPrefix...), key.Bytes()...)
}
