// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package errs defines the marketplace error taxonomy. Every precondition
// failure aborts the whole operation with no partial effect and surfaces one
// of these sentinels; callers classify them with KindOf to decide between
// retrying and abandoning.
package errs

import "errors"

var (
	// Validation: the request violates a static precondition. Never
	// retryable with the same arguments.
	ErrInvalidPurchaseType = errors.New("invalid purchase type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAuctionEndInPast    = errors.New("auction end must be in the future")
	ErrSlotExists          = errors.New("ad slot already exists")
	ErrAdExists            = errors.New("ad already exists")
	ErrEscrowExists        = errors.New("escrow already exists for this advertiser and slot")

	// StateConflict: the target record's current state disallows the
	// transition. Retry only after the conflicting state changes.
	ErrSlotNotActive         = errors.New("ad slot not active")
	ErrSlotActive            = errors.New("ad slot still active")
	ErrAuctionEnded          = errors.New("auction has ended")
	ErrAuctionNotEnded       = errors.New("auction has not ended")
	ErrEscrowAlreadyReleased = errors.New("escrow already released")
	ErrInvalidEscrow         = errors.New("invalid escrow state")

	// Authorization: the caller lacks the required capability.
	ErrUnauthorized = errors.New("unauthorized action")

	// Economic: a value comparison failed. ErrInsufficientFunds against an
	// escrow custody account signals a ledger-integrity fault and is not
	// recoverable.
	ErrBidTooLow         = errors.New("bid too low")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// NotFound: the referenced record does not exist.
	ErrSlotNotFound    = errors.New("ad slot not found")
	ErrAdNotFound      = errors.New("ad not found")
	ErrEscrowNotFound  = errors.New("escrow not found")
	ErrAccountNotFound = errors.New("account not found")
)

// Kind classifies an error for retry and surfacing decisions.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindStateConflict
	KindAuthorization
	KindEconomic
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindAuthorization:
		return "authorization"
	case KindEconomic:
		return "economic"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Retryable reports whether an operation failing with this kind may succeed
// later, after the caller re-reads state.
func (k Kind) Retryable() bool {
	return k == KindStateConflict || k == KindEconomic
}

// KindOf maps an error to its taxonomy kind. Wrapped errors are matched
// through errors.Is.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidPurchaseType),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrAuctionEndInPast),
		errors.Is(err, ErrSlotExists),
		errors.Is(err, ErrAdExists),
		errors.Is(err, ErrEscrowExists):
		return KindValidation
	case errors.Is(err, ErrSlotNotActive),
		errors.Is(err, ErrSlotActive),
		errors.Is(err, ErrAuctionEnded),
		errors.Is(err, ErrAuctionNotEnded),
		errors.Is(err, ErrEscrowAlreadyReleased),
		errors.Is(err, ErrInvalidEscrow):
		return KindStateConflict
	case errors.Is(err, ErrUnauthorized):
		return KindAuthorization
	case errors.Is(err, ErrBidTooLow),
		errors.Is(err, ErrInsufficientFunds):
		return KindEconomic
	case errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrAdNotFound),
		errors.Is(err, ErrEscrowNotFound),
		errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	default:
		return KindUnknown
	}
}
