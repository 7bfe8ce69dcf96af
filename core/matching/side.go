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
	"sort"

	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"

	"github.com/pkg/errors"
)

// ErrPriceNotFound signals that a price was not found on the book side.
var ErrPriceNotFound = errors.New("price-volume pair not found")

// OrderBookSide represent a side of the book, either Sell or Buy.
type OrderBookSide struct {
	side   types.Side
	log    *logging.Logger
	levels []*PriceLevel
}

func (s *OrderBookSide) addOrder(o *types.Order) {
	s.getPriceLevel(o.Price).addOrder(o)
}

// BestPriceAndVolume returns the top of book price and volume,
// returns an error if the book side is empty.
func (s *OrderBookSide) BestPriceAndVolume() (*num.Uint, uint64, error) {
	if len(s.levels) <= 0 {
		return num.UintZero(), 0, errors.New("no orders on the book")
	}
	last := len(s.levels) - 1
	return s.levels[last].price.Clone(), s.levels[last].volume, nil
}

// RemoveOrder will remove an order from the book.
func (s *OrderBookSide) RemoveOrder(o *types.Order) (*types.Order, error) {
	// first we try to find the price level of the order
	var i int
	if o.Side == types.SideBuy {
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.GTE(o.Price) })
	} else {
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.LTE(o.Price) })
	}
	// we did not find the level,
	// then the order does not exist at that price
	if i >= len(s.levels) || s.levels[i].price.NEQ(o.Price) {
		return nil, types.ErrOrderNotFound
	}

	oidx := -1
	for index, order := range s.levels[i].orders {
		if order.ID == o.ID {
			oidx = index
			break
		}
	}
	if oidx == -1 {
		return nil, types.ErrOrderNotFound
	}

	order := s.levels[i].orders[oidx]
	s.levels[i].removeOrder(oidx)

	if len(s.levels[i].orders) <= 0 {
		s.levels = s.levels[:i+copy(s.levels[i:], s.levels[i+1:])]
	}

	return order, nil
}

func (s *OrderBookSide) getPriceLevelIfExists(price *num.Uint) *PriceLevel {
	var i int
	if s.side == types.SideBuy {
		// buy side levels are ordered ascending, best at the end
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.GTE(price) })
	} else {
		// sell side levels are ordered descending, best at the end
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.LTE(price) })
	}

	if i < len(s.levels) && s.levels[i].price.EQ(price) {
		return s.levels[i]
	}
	return nil
}

func (s *OrderBookSide) getPriceLevel(price *num.Uint) *PriceLevel {
	var i int
	if s.side == types.SideBuy {
		// buy side levels are ordered ascending, best at the end
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.GTE(price) })
	} else {
		// sell side levels are ordered descending, best at the end
		i = sort.Search(len(s.levels), func(i int) bool { return s.levels[i].price.LTE(price) })
	}

	// we found the level, just return it
	if i < len(s.levels) && s.levels[i].price.EQ(price) {
		return s.levels[i]
	}

	// append a nil first to make sure we have enough room,
	// it is overwritten just next with the slice insert
	level := NewPriceLevel(price.Clone())
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = level
	return level
}

// GetVolume returns the volume at the given price level.
func (s *OrderBookSide) GetVolume(price *num.Uint) (uint64, error) {
	priceLevel := s.getPriceLevelIfExists(price)
	if priceLevel == nil {
		return 0, ErrPriceNotFound
	}
	return priceLevel.volume, nil
}

// uncross trades the aggressive order against this side of the book while
// the opposite prices still cross its limit. Returns the trades and the
// impacted passive orders.
func (s *OrderBookSide) uncross(agg *types.Order) ([]*types.Trade, []*types.Order) {
	var (
		trades         []*types.Trade
		impactedOrders []*types.Order
		checkPrice     func(*num.Uint) bool
	)

	if agg.Side == types.SideSell {
		// selling into the buy side, levels at or above the limit cross
		checkPrice = func(levelPrice *num.Uint) bool { return levelPrice.GTE(agg.Price) }
	} else {
		// buying from the sell side, levels at or below the limit cross
		checkPrice = func(levelPrice *num.Uint) bool { return levelPrice.LTE(agg.Price) }
	}

	var (
		idx     = len(s.levels) - 1
		filled  bool
		ntrades []*types.Trade
		nimpact []*types.Order
	)

	// in here we iterate from the end, as it's easier to remove the
	// price levels from the back of the slice instead of from the front,
	// also it will allow us to reduce allocations
	for !filled && idx >= 0 {
		if !checkPrice(s.levels[idx].price) {
			break
		}
		filled, ntrades, nimpact = s.levels[idx].uncross(agg)
		trades = append(trades, ntrades...)
		impactedOrders = append(impactedOrders, nimpact...)
		if len(s.levels[idx].orders) <= 0 {
			idx--
		}
	}

	// now we nil the price levels that have been completely emptied out
	// then we resize the slice
	if idx < 0 || len(s.levels[idx].orders) > 0 {
		// do not remove this one as it's not emptied already
		idx++
	}
	if idx < len(s.levels) {
		// nil out the price levels so they get collected at some point
		for i := idx; i < len(s.levels); i++ {
			s.levels[i] = nil
		}
		s.levels = s.levels[:idx]
	}

	return trades, impactedOrders
}

// allOrders returns every resting order on this side, best level first,
// oldest order first within a level.
func (s *OrderBookSide) allOrders() []*types.Order {
	orders := make([]*types.Order, 0, s.getOrderCount())
	for i := len(s.levels) - 1; i >= 0; i-- {
		orders = append(orders, s.levels[i].orders...)
	}
	return orders
}

func (s *OrderBookSide) getLevels() []*PriceLevel {
	return s.levels
}

func (s *OrderBookSide) getOrderCount() int64 {
	var orderCount int64
	for _, level := range s.levels {
		orderCount = orderCount + int64(len(level.orders))
	}
	return orderCount
}

func (s *OrderBookSide) getTotalVolume() int64 {
	var volume int64
	for _, level := range s.levels {
		volume = volume + int64(level.volume)
	}
	return volume
}
