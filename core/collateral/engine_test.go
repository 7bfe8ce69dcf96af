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

package collateral_test

import (
	"testing"

	"code.ceresmarkets.io/ceres/core/collateral"
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEvent = "event-1"
	testAsset = "USDX"
)

func newTestEngine(t *testing.T) *collateral.Engine {
	t.Helper()
	engine := collateral.New(logging.NewTestLogger(), collateral.NewDefaultConfig())
	require.NoError(t, engine.RegisterEvent(testEvent, 2, testAsset))
	return engine
}

func deposit(t *testing.T, e *collateral.Engine, party string, amount uint64) {
	t.Helper()
	_, err := e.Deposit(party, testAsset, num.NewUint(amount))
	require.NoError(t, err)
}

func buyOrder(id uint64, party string, price, size uint64) *types.Order {
	return &types.Order{
		ID:        types.OrderID(id),
		Event:     testEvent,
		Outcome:   0,
		Party:     party,
		Side:      types.SideBuy,
		Price:     num.NewUint(price),
		Size:      size,
		Remaining: size,
		Asset:     testAsset,
	}
}

func sellOrder(id uint64, party string, price, size uint64) *types.Order {
	o := buyOrder(id, party, price, size)
	o.Side = types.SideSell
	return o
}

func TestDepositWithdraw(t *testing.T) {
	engine := newTestEngine(t)

	transfer, err := engine.Deposit("partyA", testAsset, num.NewUint(1000))
	require.NoError(t, err)
	assert.Equal(t, types.TransferTypeDeposit, transfer.Type)
	assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(1000))

	_, err = engine.Withdraw("partyA", testAsset, num.NewUint(400))
	require.NoError(t, err)
	assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(600))

	t.Run("withdrawing more than available fails", func(t *testing.T) {
		_, err := engine.Withdraw("partyA", testAsset, num.NewUint(601))
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
		assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(600))
	})

	t.Run("zero amounts are rejected", func(t *testing.T) {
		_, err := engine.Deposit("partyA", testAsset, num.UintZero())
		assert.ErrorIs(t, err, types.ErrInvalidAmount)
		_, err = engine.Withdraw("partyA", testAsset, num.UintZero())
		assert.ErrorIs(t, err, types.ErrInvalidAmount)
	})
}

func TestRegisterEvent(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("duplicate registration fails", func(t *testing.T) {
		err := engine.RegisterEvent(testEvent, 2, testAsset)
		assert.ErrorIs(t, err, types.ErrEventAlreadyRegistered)
	})

	t.Run("zero outcomes fails", func(t *testing.T) {
		err := engine.RegisterEvent("event-2", 0, testAsset)
		assert.ErrorIs(t, err, types.ErrInvalidOutcomeCount)
	})

	t.Run("too many outcomes fails", func(t *testing.T) {
		err := engine.RegisterEvent("event-2", types.MaxOutcomes+1, testAsset)
		assert.ErrorIs(t, err, types.ErrInvalidOutcomeCount)
	})

	t.Run("empty asset fails", func(t *testing.T) {
		err := engine.RegisterEvent("event-2", 2, "")
		assert.ErrorIs(t, err, types.ErrInvalidAsset)
	})

	t.Run("asset is stored at registration", func(t *testing.T) {
		asset, err := engine.GetEventAsset(testEvent)
		require.NoError(t, err)
		assert.Equal(t, testAsset, asset)
	})
}

func TestMintAndBurnCompleteSet(t *testing.T) {
	engine := newTestEngine(t)
	deposit(t, engine, "partyA", 1000)

	// a set of 100 shares costs 100*MaxPrice/PricePrecision = 100
	_, err := engine.MintCompleteSet("partyA", testEvent, 100)
	require.NoError(t, err)

	assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(900))
	for outcome := uint32(0); outcome < 2; outcome++ {
		pos, err := engine.GetLongPosition(testEvent, outcome, "partyA")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), pos)
	}
	pool, err := engine.GetPrizePool(testEvent)
	require.NoError(t, err)
	assert.True(t, pool.EQUint64(100))

	t.Run("burn returns the collateral", func(t *testing.T) {
		_, err := engine.BurnCompleteSet("partyA", testEvent, 40)
		require.NoError(t, err)
		assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(940))
		pool, err := engine.GetPrizePool(testEvent)
		require.NoError(t, err)
		assert.True(t, pool.EQUint64(60))
	})

	t.Run("burn fails without shares in every outcome", func(t *testing.T) {
		_, err := engine.BurnCompleteSet("partyA", testEvent, 61)
		assert.ErrorIs(t, err, types.ErrInsufficientPosition)
	})

	t.Run("mint fails without enough balance", func(t *testing.T) {
		_, err := engine.MintCompleteSet("partyA", testEvent, 10000)
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	})
}

func TestLockOrderFunds(t *testing.T) {
	t.Run("buy lock debits quote inclusive of fee", func(t *testing.T) {
		engine := newTestEngine(t)
		deposit(t, engine, "partyA", 1000)

		// (100+10)*6000/10000 = 66
		transfer, err := engine.LockOrderFunds(buyOrder(1, "partyA", 6000, 100), 10)
		require.NoError(t, err)
		assert.Equal(t, types.TransferTypeOrderLock, transfer.Type)
		assert.True(t, transfer.Amount.EQUint64(66))
		assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(934))
	})

	t.Run("buy lock fails on insufficient balance", func(t *testing.T) {
		engine := newTestEngine(t)
		deposit(t, engine, "partyA", 50)

		_, err := engine.LockOrderFunds(buyOrder(1, "partyA", 6000, 100), 10)
		assert.ErrorIs(t, err, types.ErrInsufficientBalance)
		assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(50))
	})

	t.Run("sell lock debits shares inclusive of fee", func(t *testing.T) {
		engine := newTestEngine(t)
		deposit(t, engine, "partyA", 1000)
		_, err := engine.MintCompleteSet("partyA", testEvent, 200)
		require.NoError(t, err)

		_, err = engine.LockOrderFunds(sellOrder(1, "partyA", 6000, 100), 10)
		require.NoError(t, err)
		pos, err := engine.GetLongPosition(testEvent, 0, "partyA")
		require.NoError(t, err)
		assert.Equal(t, uint64(90), pos)
	})

	t.Run("sell lock fails on insufficient position", func(t *testing.T) {
		engine := newTestEngine(t)

		_, err := engine.LockOrderFunds(sellOrder(1, "partyA", 6000, 100), 0)
		assert.ErrorIs(t, err, types.ErrInsufficientPosition)
	})

	t.Run("release returns the remainder", func(t *testing.T) {
		engine := newTestEngine(t)
		deposit(t, engine, "partyA", 1000)

		_, err := engine.LockOrderFunds(buyOrder(1, "partyA", 6000, 100), 0)
		require.NoError(t, err)
		transfer, err := engine.ReleaseOrderFunds(types.OrderID(1))
		require.NoError(t, err)
		assert.Equal(t, types.TransferTypeOrderUnlock, transfer.Type)
		assert.True(t, engine.GetAvailableBalance("partyA", testAsset).EQUint64(1000))

		_, err = engine.ReleaseOrderFunds(types.OrderID(1))
		assert.ErrorIs(t, err, types.ErrOrderNotFound)
	})
}

func TestSettleMatch(t *testing.T) {
	engine := newTestEngine(t)
	deposit(t, engine, "buyer", 1000)
	deposit(t, engine, "seller", 1000)
	_, err := engine.MintCompleteSet("seller", testEvent, 200)
	require.NoError(t, err)

	_, err = engine.LockOrderFunds(buyOrder(1, "buyer", 6000, 100), 0)
	require.NoError(t, err)
	_, err = engine.LockOrderFunds(sellOrder(2, "seller", 6000, 100), 0)
	require.NoError(t, err)

	transfers := engine.SettleMatch(&types.Trade{
		Event:     testEvent,
		Outcome:   0,
		Price:     num.NewUint(6000),
		Size:      100,
		Buyer:     "buyer",
		Seller:    "seller",
		BuyOrder:  types.OrderID(1),
		SellOrder: types.OrderID(2),
	})
	require.Len(t, transfers, 2)

	// payment = 100*6000/10000 = 60
	pos, err := engine.GetLongPosition(testEvent, 0, "buyer")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), pos)
	assert.True(t, engine.GetAvailableBalance("seller", testAsset).EQUint64(860))

	// both locks fully consumed, releasing them moves nothing
	transfer, err := engine.ReleaseOrderFunds(types.OrderID(1))
	require.NoError(t, err)
	assert.Nil(t, transfer)
	transfer, err = engine.ReleaseOrderFunds(types.OrderID(2))
	require.NoError(t, err)
	assert.Nil(t, transfer)
}

func TestDistributePrizePool(t *testing.T) {
	engine := newTestEngine(t)
	deposit(t, engine, "minter", 2000)
	_, err := engine.MintCompleteSet("minter", testEvent, 1000)
	require.NoError(t, err)

	payouts := []*types.Transfer{
		{Party: "winner1", Asset: testAsset, Event: testEvent, Amount: num.NewUint(300), Type: types.TransferTypePrizePayout},
		{Party: "winner2", Asset: testAsset, Event: testEvent, Amount: num.NewUint(700), Type: types.TransferTypePrizePayout},
	}
	require.NoError(t, engine.DistributePrizePool(testEvent, 1, payouts))

	assert.True(t, engine.GetAvailableBalance("winner1", testAsset).EQUint64(300))
	assert.True(t, engine.GetAvailableBalance("winner2", testAsset).EQUint64(700))

	pool, err := engine.GetPrizePool(testEvent)
	require.NoError(t, err)
	assert.True(t, pool.IsZero())
	assert.True(t, engine.IsSettled(testEvent))

	t.Run("second distribution fails", func(t *testing.T) {
		err := engine.DistributePrizePool(testEvent, 1, nil)
		assert.ErrorIs(t, err, types.ErrEventSettled)
	})

	t.Run("mint and burn fail after settlement", func(t *testing.T) {
		_, err := engine.MintCompleteSet("minter", testEvent, 1)
		assert.ErrorIs(t, err, types.ErrEventSettled)
		_, err = engine.BurnCompleteSet("minter", testEvent, 1)
		assert.ErrorIs(t, err, types.ErrEventSettled)
	})
}
