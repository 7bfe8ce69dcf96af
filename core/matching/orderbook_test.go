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

package matching_test

import (
	"testing"

	"code.ceresmarkets.io/ceres/core/matching"
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEvent = "event-1"

type testBook struct {
	*matching.OrderBook
	seq uint64
	ids uint64
}

func newTestBook(t *testing.T) *testBook {
	t.Helper()
	return &testBook{
		OrderBook: matching.NewOrderBook(
			logging.NewTestLogger(), matching.NewDefaultConfig(), testEvent, 0),
	}
}

func (b *testBook) submit(t *testing.T, party string, side types.Side, price, size uint64) *types.OrderConfirmation {
	t.Helper()
	b.ids++
	b.seq++
	order := &types.Order{
		ID:        types.OrderID(b.ids),
		Event:     testEvent,
		Outcome:   0,
		Party:     party,
		Side:      side,
		Price:     num.NewUint(price),
		Size:      size,
		Remaining: size,
		Status:    types.OrderStatusPending,
		CreatedAt: b.seq,
	}
	conf, err := b.SubmitOrder(order)
	require.NoError(t, err)
	return conf
}

func TestOrderBookSubmitRestsWhenBookEmpty(t *testing.T) {
	book := newTestBook(t)

	conf := book.submit(t, "partyA", types.SideBuy, 500, 100)

	assert.Len(t, conf.Trades, 0)
	assert.Equal(t, types.OrderStatusPending, conf.Order.Status)
	assert.Equal(t, int64(1), book.GetTotalNumberOfOrders())

	price, volume, err := book.BestBidPriceAndVolume()
	require.NoError(t, err)
	assert.True(t, price.EQUint64(500))
	assert.Equal(t, uint64(100), volume)
}

func TestOrderBookNonCrossingPricesDoNotTrade(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideBuy, 400, 100)
	conf := book.submit(t, "partyB", types.SideSell, 500, 100)

	assert.Len(t, conf.Trades, 0)
	assert.Equal(t, int64(2), book.GetTotalNumberOfOrders())
}

func TestOrderBookBuyAggressorTradesAtSellPrice(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideSell, 400, 100)
	conf := book.submit(t, "partyB", types.SideBuy, 500, 100)

	require.Len(t, conf.Trades, 1)
	trade := conf.Trades[0]
	// the resting sell order sets the price
	assert.True(t, trade.Price.EQUint64(400))
	assert.Equal(t, uint64(100), trade.Size)
	assert.Equal(t, "partyB", trade.Buyer)
	assert.Equal(t, "partyA", trade.Seller)
	assert.Equal(t, types.SideBuy, trade.Aggressor)
	assert.Equal(t, types.OrderStatusFilled, conf.Order.Status)
	assert.Equal(t, int64(0), book.GetTotalNumberOfOrders())
}

func TestOrderBookSellAggressorTradesAtItsOwnPrice(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideBuy, 500, 100)
	conf := book.submit(t, "partyB", types.SideSell, 400, 100)

	require.Len(t, conf.Trades, 1)
	trade := conf.Trades[0]
	// the aggressive sell order sets the price, not the resting buy
	assert.True(t, trade.Price.EQUint64(400))
	assert.Equal(t, "partyA", trade.Buyer)
	assert.Equal(t, "partyB", trade.Seller)
	assert.Equal(t, types.SideSell, trade.Aggressor)
}

func TestOrderBookPriceTimePriority(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideSell, 500, 50)
	book.submit(t, "partyB", types.SideSell, 400, 50)
	book.submit(t, "partyC", types.SideSell, 400, 50)

	conf := book.submit(t, "partyD", types.SideBuy, 500, 120)

	require.Len(t, conf.Trades, 3)
	// best price first, then arrival order within the level
	assert.Equal(t, "partyB", conf.Trades[0].Seller)
	assert.True(t, conf.Trades[0].Price.EQUint64(400))
	assert.Equal(t, "partyC", conf.Trades[1].Seller)
	assert.True(t, conf.Trades[1].Price.EQUint64(400))
	assert.Equal(t, "partyA", conf.Trades[2].Seller)
	assert.True(t, conf.Trades[2].Price.EQUint64(500))
	assert.Equal(t, uint64(20), conf.Trades[2].Size)

	// partyA keeps the remainder of its order on the book
	volume, err := book.GetVolumeAtPrice(types.SideSell, num.NewUint(500))
	require.NoError(t, err)
	assert.Equal(t, uint64(30), volume)
}

func TestOrderBookPartialFillRestsRemainder(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideSell, 400, 30)
	conf := book.submit(t, "partyB", types.SideBuy, 400, 100)

	require.Len(t, conf.Trades, 1)
	assert.Equal(t, uint64(30), conf.Trades[0].Size)
	assert.Equal(t, types.OrderStatusPartiallyFilled, conf.Order.Status)
	assert.Equal(t, uint64(70), conf.Order.Remaining)

	price, volume, err := book.BestBidPriceAndVolume()
	require.NoError(t, err)
	assert.True(t, price.EQUint64(400))
	assert.Equal(t, uint64(70), volume)
}

func TestOrderBookCancelRestoresPriority(t *testing.T) {
	book := newTestBook(t)

	first := book.submit(t, "partyA", types.SideBuy, 500, 50)
	second := book.submit(t, "partyB", types.SideBuy, 500, 50)
	book.submit(t, "partyC", types.SideBuy, 500, 50)

	cancelled, err := book.CancelOrder(second.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusCancelled, cancelled.Status)

	conf := book.submit(t, "partyD", types.SideSell, 500, 80)
	require.Len(t, conf.Trades, 2)
	assert.Equal(t, "partyA", conf.Trades[0].Buyer)
	assert.Equal(t, uint64(50), conf.Trades[0].Size)
	// partyB left the queue, partyC is next
	assert.Equal(t, "partyC", conf.Trades[1].Buyer)
	assert.Equal(t, uint64(30), conf.Trades[1].Size)

	_, err = book.GetOrderByID(first.Order.ID)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
}

func TestOrderBookCancelUnknownOrder(t *testing.T) {
	book := newTestBook(t)

	_, err := book.CancelOrder(types.OrderID(42))
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
}

func TestOrderBookCancelAllOrders(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideBuy, 500, 50)
	book.submit(t, "partyB", types.SideBuy, 400, 50)
	book.submit(t, "partyC", types.SideSell, 600, 50)

	cancelled := book.CancelAllOrders()
	require.Len(t, cancelled, 3)
	for _, order := range cancelled {
		assert.Equal(t, types.OrderStatusCancelled, order.Status)
	}
	assert.Equal(t, int64(0), book.GetTotalNumberOfOrders())
	assert.Equal(t, int64(0), book.GetTotalVolume())

	_, _, err := book.BestBidPriceAndVolume()
	assert.Error(t, err)
}

func TestOrderBookEmptiedLevelIsRemoved(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideSell, 400, 50)
	book.submit(t, "partyB", types.SideSell, 500, 50)
	book.submit(t, "partyC", types.SideBuy, 400, 50)

	// 400 level fully consumed, 500 is now best offer
	price, volume, err := book.BestOfferPriceAndVolume()
	require.NoError(t, err)
	assert.True(t, price.EQUint64(500))
	assert.Equal(t, uint64(50), volume)

	_, err = book.GetVolumeAtPrice(types.SideSell, num.NewUint(400))
	assert.ErrorIs(t, err, matching.ErrPriceNotFound)
}

func TestOrderBookValidation(t *testing.T) {
	book := newTestBook(t)

	newOrder := func(price, size uint64) *types.Order {
		return &types.Order{
			ID:        types.OrderID(1000 + price + size),
			Event:     testEvent,
			Party:     "partyA",
			Side:      types.SideBuy,
			Price:     num.NewUint(price),
			Size:      size,
			Remaining: size,
			Status:    types.OrderStatusPending,
		}
	}

	t.Run("zero price is rejected", func(t *testing.T) {
		_, err := book.SubmitOrder(newOrder(0, 100))
		assert.ErrorIs(t, err, types.ErrInvalidOrderPrice)
	})

	t.Run("price above maximum is rejected", func(t *testing.T) {
		_, err := book.SubmitOrder(newOrder(types.MaxPrice+types.TickSize, 100))
		assert.ErrorIs(t, err, types.ErrInvalidOrderPrice)
	})

	t.Run("off-tick price is rejected", func(t *testing.T) {
		_, err := book.SubmitOrder(newOrder(505, 100))
		assert.ErrorIs(t, err, types.ErrPriceNotInTickSize)
	})

	t.Run("zero size is rejected", func(t *testing.T) {
		_, err := book.SubmitOrder(newOrder(500, 0))
		assert.ErrorIs(t, err, types.ErrInvalidOrderSize)
	})

	t.Run("unspecified side is rejected", func(t *testing.T) {
		order := newOrder(500, 100)
		order.Side = types.SideUnspecified
		_, err := book.SubmitOrder(order)
		assert.ErrorIs(t, err, types.ErrInvalidOrderSide)
	})

	t.Run("out-of-range side is rejected", func(t *testing.T) {
		order := newOrder(500, 100)
		order.Side = types.Side(9)
		_, err := book.SubmitOrder(order)
		assert.ErrorIs(t, err, types.ErrInvalidOrderSide)
	})

	t.Run("wrong event is rejected", func(t *testing.T) {
		order := newOrder(500, 100)
		order.Event = "other-event"
		_, err := book.SubmitOrder(order)
		assert.ErrorIs(t, err, types.ErrUnknownEvent)
	})

	t.Run("price at maximum is accepted", func(t *testing.T) {
		_, err := book.SubmitOrder(newOrder(types.MaxPrice, 100))
		assert.NoError(t, err)
	})
}

func TestOrderBookAggressorSweepsMultipleLevels(t *testing.T) {
	book := newTestBook(t)

	book.submit(t, "partyA", types.SideBuy, 600, 40)
	book.submit(t, "partyB", types.SideBuy, 500, 40)
	book.submit(t, "partyC", types.SideBuy, 400, 40)

	conf := book.submit(t, "partyD", types.SideSell, 450, 100)

	require.Len(t, conf.Trades, 2)
	// both trades print at the aggressive sell price
	assert.True(t, conf.Trades[0].Price.EQUint64(450))
	assert.True(t, conf.Trades[1].Price.EQUint64(450))
	assert.Equal(t, "partyA", conf.Trades[0].Buyer)
	assert.Equal(t, "partyB", conf.Trades[1].Buyer)

	// the 400 bid does not cross, the sell remainder rests
	assert.Equal(t, types.OrderStatusPartiallyFilled, conf.Order.Status)
	assert.Equal(t, uint64(20), conf.Order.Remaining)

	price, volume, err := book.BestOfferPriceAndVolume()
	require.NoError(t, err)
	assert.True(t, price.EQUint64(450))
	assert.Equal(t, uint64(20), volume)
}
