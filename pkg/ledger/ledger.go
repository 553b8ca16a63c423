// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the value-transfer substrate behind the marketplace.
// It stands in for the external chain ledger: accounts keyed by ID, an
// atomic transfer primitive, and nothing else. Escrow custody accounts are
// ordinary accounts addressed by the escrow's record key.
package ledger

import (
	"math"
	"sync"

	"github.com/adxyz/admarket/pkg/errs"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/log"
)

// Ledger tracks account balances in base units.
type Ledger struct {
	mu       sync.Mutex
	balances map[ids.ID]uint64
	log      log.Logger
}

// New creates an empty ledger
func New(logger log.Logger) *Ledger {
	return &Ledger{
		balances: make(map[ids.ID]uint64),
		log:      logger,
	}
}

// Deposit credits an account. This is the dev/test faucet standing in for
// value entering the system from outside.
func (l *Ledger) Deposit(account ids.ID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[account] > math.MaxUint64-amount {
		l.balances[account] = math.MaxUint64
	} else {
		l.balances[account] += amount
	}
}

// Balance returns the current balance of an account. Unknown accounts hold
// zero.
func (l *Ledger) Balance(account ids.ID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Transfer atomically moves amount from one account to another. It either
// fully applies or fails with no effect.
func (l *Ledger) Transfer(from, to ids.ID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return errs.ErrInsufficientFunds
	}
	l.balances[from] -= amount
	l.balances[to] += amount

	l.log.Debug("transfer applied", "from", from, "to", to, "amount", amount)
	return nil
}

// TotalSupply sums all balances. Transfers conserve it; only Deposit grows it.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total uint64
	for _, b := range l.balances {
		total += b
	}
	return total
}
