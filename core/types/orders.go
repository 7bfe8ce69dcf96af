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

import (
	"fmt"

	"code.ceresmarkets.io/ceres/libs/num"
)

// OrderID identifies an order. IDs are assigned monotonically by the
// execution engine and never reused.
type OrderID uint64

// Side of an order or of a trade aggressor.
type Side int8

const (
	SideUnspecified Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unspecified"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnspecified
	}
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus int8

const (
	OrderStatusUnspecified OrderStatus = iota
	// OrderStatusPending - resting on the book, nothing filled yet.
	OrderStatusPending
	// OrderStatusPartiallyFilled - resting on the book with a partial fill.
	OrderStatusPartiallyFilled
	// OrderStatusFilled - fully filled, off the book. Terminal.
	OrderStatusFilled
	// OrderStatusCancelled - cancelled by its owner or by settlement. Terminal.
	OrderStatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusPartiallyFilled:
		return "partially-filled"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unspecified"
	}
}

// IsTerminal reports whether the order can no longer trade or be cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// Order is a limit order on a single outcome of an event.
type Order struct {
	ID        OrderID
	Event     string
	Outcome   uint32
	Party     string
	Side      Side
	Price     *num.Uint
	Size      uint64
	Remaining uint64
	Status    OrderStatus
	Asset     string
	// CreatedAt is a monotonic sequence number used for time priority,
	// not a wall-clock timestamp.
	CreatedAt uint64
}

func (o *Order) Clone() *Order {
	cpy := *o
	cpy.Price = o.Price.Clone()
	return &cpy
}

// IsResting reports whether the order currently sits on the book.
func (o *Order) IsResting() bool {
	return o.Status == OrderStatusPending ||
		o.Status == OrderStatusPartiallyFilled
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"ID(%d) event(%s) outcome(%d) party(%s) side(%s) price(%s) size(%d) remaining(%d) status(%s) createdAt(%d)",
		o.ID,
		o.Event,
		o.Outcome,
		o.Party,
		o.Side.String(),
		o.Price.String(),
		o.Size,
		o.Remaining,
		o.Status.String(),
		o.CreatedAt,
	)
}

// Trade is the result of a buy order crossing a sell order. The price is
// always the sell order's limit price.
type Trade struct {
	Event     string
	Outcome   uint32
	Price     *num.Uint
	Size      uint64
	Buyer     string
	Seller    string
	BuyOrder  OrderID
	SellOrder OrderID
	Aggressor Side
}

func (t *Trade) Clone() *Trade {
	cpy := *t
	cpy.Price = t.Price.Clone()
	return &cpy
}

func (t *Trade) String() string {
	return fmt.Sprintf(
		"event(%s) outcome(%d) price(%s) size(%d) buyer(%s) seller(%s) buyOrder(%d) sellOrder(%d) aggressor(%s)",
		t.Event,
		t.Outcome,
		t.Price.String(),
		t.Size,
		t.Buyer,
		t.Seller,
		t.BuyOrder,
		t.SellOrder,
		t.Aggressor.String(),
	)
}

// OrderConfirmation is the result of submitting an order: the submitted
// order in its post-uncrossing state, the trades it generated, and the
// passive orders it impacted.
type OrderConfirmation struct {
	Order                 *Order
	Trades                []*Trade
	PassiveOrdersAffected []*Order
}
