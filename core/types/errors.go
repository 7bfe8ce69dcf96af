// Copyright (C) 2023 Ceres Markets Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import "errors"

var (
	// ErrEventAlreadyRegistered is returned when registering an event ID twice.
	ErrEventAlreadyRegistered = errors.New("event already registered")

	// ErrUnknownEvent is returned when an operation references an event ID
	// that was never registered.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidOutcomeCount is returned when registering an event with zero
	// outcomes or more than MaxOutcomes.
	ErrInvalidOutcomeCount = errors.New("invalid outcome count")

	// ErrInvalidAsset is returned when registering an event with an empty
	// settlement asset.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrEventSettled is returned when trading or settling an event that has
	// already settled.
	ErrEventSettled = errors.New("event already settled")

	// ErrInvalidOutcome is returned when an outcome index is out of range for
	// the event.
	ErrInvalidOutcome = errors.New("invalid outcome index")

	// ErrInvalidOrderSide is returned when an order side is neither buy nor
	// sell.
	ErrInvalidOrderSide = errors.New("invalid order side")

	// ErrInvalidOrderPrice is returned when an order price is zero or above
	// MaxPrice.
	ErrInvalidOrderPrice = errors.New("invalid order price")

	// ErrPriceNotInTickSize is returned when an order price is not a multiple
	// of TickSize.
	ErrPriceNotInTickSize = errors.New("order price not in tick size")

	// ErrInvalidOrderSize is returned when an order size is zero.
	ErrInvalidOrderSize = errors.New("invalid order size")

	// ErrInsufficientBalance is returned when a party's available balance
	// cannot cover a lock, a withdrawal or a mint.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientPosition is returned when a party's long position cannot
	// cover a share lock or a burn.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrOrderNotFound is returned when an order ID is unknown or the order
	// no longer rests on the book.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotOrderOwner is returned when a party tries to cancel an order it
	// does not own.
	ErrNotOrderOwner = errors.New("party does not own the order")

	// ErrOrderNotCancellable is returned when cancelling an order in a
	// terminal state.
	ErrOrderNotCancellable = errors.New("order not cancellable")

	// ErrInvalidAmount is returned when a deposit, withdrawal, mint or burn
	// amount is zero.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientPrizePool is returned when burning complete sets would
	// take the prize pool below zero.
	ErrInsufficientPrizePool = errors.New("insufficient prize pool")
)
