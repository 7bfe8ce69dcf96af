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

package matching

import (
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
)

// OrderBook is the limit order book for one outcome of one event. Orders
// match by price-time priority, one side of the book against the other.
type OrderBook struct {
	log *logging.Logger

	event   string
	outcome uint32
	buy     *OrderBookSide
	sell    *OrderBookSide

	// ordersByID tracks every order resting on the book
	ordersByID map[types.OrderID]*types.Order
}

// NewOrderBook create an order book with the given event and outcome.
func NewOrderBook(log *logging.Logger, config Config, event string, outcome uint32) *OrderBook {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &OrderBook{
		log:        log,
		event:      event,
		outcome:    outcome,
		buy:        &OrderBookSide{log: log, side: types.SideBuy},
		sell:       &OrderBookSide{log: log, side: types.SideSell},
		ordersByID: map[types.OrderID]*types.Order{},
	}
}

// SubmitOrder uncrosses the order against the opposite side of the book and
// rests any remainder. The caller is expected to have validated and funded
// the order already.
func (b *OrderBook) SubmitOrder(order *types.Order) (*types.OrderConfirmation, error) {
	if err := b.validateOrder(order); err != nil {
		return nil, err
	}

	if _, ok := b.ordersByID[order.ID]; ok {
		b.log.Panic("an order in the book already has the same ID",
			logging.Order(*order))
	}

	var (
		trades         []*types.Trade
		impactedOrders []*types.Order
	)
	if order.Side == types.SideBuy {
		trades, impactedOrders = b.sell.uncross(order)
	} else {
		trades, impactedOrders = b.buy.uncross(order)
	}

	// passive orders fully consumed by the uncrossing leave the lookup table
	for _, impacted := range impactedOrders {
		if impacted.Remaining == 0 {
			delete(b.ordersByID, impacted.ID)
		}
	}

	switch {
	case order.Remaining == 0:
		order.Status = types.OrderStatusFilled
	case order.Remaining < order.Size:
		order.Status = types.OrderStatusPartiallyFilled
	default:
		order.Status = types.OrderStatusPending
	}

	// rest whatever is left of the aggressive order
	if order.Remaining > 0 {
		b.getSide(order.Side).addOrder(order)
		b.ordersByID[order.ID] = order
	}

	return &types.OrderConfirmation{
		Order:                 order,
		Trades:                trades,
		PassiveOrdersAffected: impactedOrders,
	}, nil
}

// CancelOrder removes the given order from the book and marks it cancelled.
func (b *OrderBook) CancelOrder(orderID types.OrderID) (*types.Order, error) {
	order, ok := b.ordersByID[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}

	if _, err := b.getSide(order.Side).RemoveOrder(order); err != nil {
		// the lookup table and the book sides disagree on what rests
		b.log.Panic("Failure removing order from the book during cancel",
			logging.Order(*order),
			logging.Error(err))
	}
	delete(b.ordersByID, orderID)

	order.Status = types.OrderStatusCancelled
	return order, nil
}

// CancelAllOrders removes every resting order from the book, marking each
// one cancelled, best levels first. Used when the event settles.
func (b *OrderBook) CancelAllOrders() []*types.Order {
	cancelled := make([]*types.Order, 0, len(b.ordersByID))
	for _, side := range []*OrderBookSide{b.buy, b.sell} {
		for _, order := range side.allOrders() {
			order.Status = types.OrderStatusCancelled
			delete(b.ordersByID, order.ID)
			cancelled = append(cancelled, order)
		}
		side.levels = nil
	}
	return cancelled
}

// GetOrderByID returns an order resting on the book, by ID.
func (b *OrderBook) GetOrderByID(orderID types.OrderID) (*types.Order, error) {
	order, ok := b.ordersByID[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return order, nil
}

// BestBidPriceAndVolume returns the highest bid price and volume on the book.
func (b *OrderBook) BestBidPriceAndVolume() (*num.Uint, uint64, error) {
	return b.buy.BestPriceAndVolume()
}

// BestOfferPriceAndVolume returns the lowest offer price and volume on the book.
func (b *OrderBook) BestOfferPriceAndVolume() (*num.Uint, uint64, error) {
	return b.sell.BestPriceAndVolume()
}

// GetVolumeAtPrice returns the resting volume at the given price on the
// given side.
func (b *OrderBook) GetVolumeAtPrice(side types.Side, price *num.Uint) (uint64, error) {
	return b.getSide(side).GetVolume(price)
}

// GetTotalNumberOfOrders is the total number of orders in the book across
// both sides.
func (b *OrderBook) GetTotalNumberOfOrders() int64 {
	return b.buy.getOrderCount() + b.sell.getOrderCount()
}

// GetTotalVolume is the total volume resting in the book across both sides.
func (b *OrderBook) GetTotalVolume() int64 {
	return b.buy.getTotalVolume() + b.sell.getTotalVolume()
}

func (b *OrderBook) getSide(orderSide types.Side) *OrderBookSide {
	if orderSide == types.SideBuy {
		return b.buy
	}
	return b.sell
}

func (b *OrderBook) validateOrder(order *types.Order) error {
	if order.Event != b.event || order.Outcome != b.outcome {
		if b.log.GetLevel() == logging.DebugLevel {
			b.log.Debug("Order book and order event/outcome do not match",
				logging.Order(*order),
				logging.EventID(b.event),
				logging.Uint32("outcome", b.outcome))
		}
		return types.ErrUnknownEvent
	}

	if order.Side != types.SideBuy && order.Side != types.SideSell {
		return types.ErrInvalidOrderSide
	}

	if order.Price == nil || order.Price.IsZero() || order.Price.GTUint64(types.MaxPrice) {
		return types.ErrInvalidOrderPrice
	}

	if mod := num.UintZero(); !mod.Mod(order.Price, num.NewUint(types.TickSize)).IsZero() {
		return types.ErrPriceNotInTickSize
	}

	if order.Size == 0 || order.Remaining == 0 || order.Remaining > order.Size {
		return types.ErrInvalidOrderSize
	}

	return nil
}
