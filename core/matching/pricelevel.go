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
)

// PriceLevel holds the resting orders at one price on one side of the book,
// in strict arrival order.
type PriceLevel struct {
	price  *num.Uint
	orders []*types.Order
	volume uint64
}

func NewPriceLevel(price *num.Uint) *PriceLevel {
	return &PriceLevel{
		price:  price,
		orders: []*types.Order{},
	}
}

func (l *PriceLevel) addOrder(o *types.Order) {
	// new orders always go to the back of the queue
	l.orders = append(l.orders, o)
	l.volume += o.Remaining
}

func (l *PriceLevel) removeOrder(index int) {
	l.reduceVolume(l.orders[index].Remaining)
	copy(l.orders[index:], l.orders[index+1:])
	l.orders = l.orders[:len(l.orders)-1]
}

func (l *PriceLevel) reduceVolume(reduceBy uint64) {
	l.volume -= reduceBy
}

// uncross trades the aggressive order against the resting orders of this
// level, oldest first. The trade price is always the sell side's limit
// price: the level price when the aggressor buys, the aggressor's price
// when it sells. Returns whether the aggressor is fully filled, along with
// the trades and the impacted passive orders.
func (l *PriceLevel) uncross(agg *types.Order) (bool, []*types.Trade, []*types.Order) {
	var (
		trades         []*types.Trade
		impactedOrders []*types.Order
		toRemove       []int
	)

	// the price of all trades on this level, per the complete-set model the
	// seller's limit is what both sides pay/receive
	price := l.price
	if agg.Side == types.SideSell {
		price = agg.Price
	}

	for i, order := range l.orders {
		if agg.Remaining == 0 {
			break
		}

		size := order.Remaining
		if agg.Remaining < size {
			size = agg.Remaining
		}

		trade := newTrade(agg, order, price, size)

		agg.Remaining -= size
		order.Remaining -= size
		l.volume -= size

		if order.Remaining == 0 {
			order.Status = types.OrderStatusFilled
			toRemove = append(toRemove, i)
		} else {
			order.Status = types.OrderStatusPartiallyFilled
		}

		trades = append(trades, trade)
		impactedOrders = append(impactedOrders, order)
	}

	// remove the fully filled orders, from the back so the saved
	// indexes stay valid
	for i := len(toRemove) - 1; i >= 0; i-- {
		idx := toRemove[i]
		copy(l.orders[idx:], l.orders[idx+1:])
		l.orders = l.orders[:len(l.orders)-1]
	}

	return agg.Remaining == 0, trades, impactedOrders
}

// newTrade builds the trade between the aggressive and the passive order,
// at the given price for the given size.
func newTrade(agg, pass *types.Order, price *num.Uint, size uint64) *types.Trade {
	trade := &types.Trade{
		Event:     agg.Event,
		Outcome:   agg.Outcome,
		Price:     price.Clone(),
		Size:      size,
		Aggressor: agg.Side,
	}
	if agg.Side == types.SideBuy {
		trade.Buyer = agg.Party
		trade.Seller = pass.Party
		trade.BuyOrder = agg.ID
		trade.SellOrder = pass.ID
	} else {
		trade.Buyer = pass.Party
		trade.Seller = agg.Party
		trade.BuyOrder = pass.ID
		trade.SellOrder = agg.ID
	}
	return trade
}
