// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import "time"

// Clock is the trusted time oracle used to evaluate auction deadlines.
// Expiry is purely pull-based: no background timer exists, the clock is
// consulted at call time by PlaceBid and CloseAuction.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
