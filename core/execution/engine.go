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

package execution

import (
	"code.ceresmarkets.io/ceres/core/collateral"
	"code.ceresmarkets.io/ceres/core/settlement"
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
	"code.ceresmarkets.io/ceres/metrics"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FeeCalculator sizes the fee for an order or a trade. May be nil, in
// which case no fees apply.
type FeeCalculator interface {
	Calculate(size uint64, category types.FeeCategory) uint64
}

// FeeCollector is told about every fee charge. May be nil.
type FeeCollector interface {
	Collect(asset, party string, amount uint64, eventID string, category types.FeeCategory)
}

// Engine is the public surface of the matching core. It owns the event
// registry and the order ID sequence and routes every operation to the
// right market. Callers serialize access, the engine does no locking of
// its own.
type Engine struct {
	log    *logging.Logger
	config Config

	collateral *collateral.Engine
	settlement *settlement.Engine

	feeCalculator FeeCalculator
	feeCollector  FeeCollector

	markets map[string]*Market
	// orderToEvent routes order IDs back to their market
	orderToEvent map[types.OrderID]string

	// lastOrderID and lastSeq are monotonic, never reused
	lastOrderID uint64
	lastSeq     uint64
}

// NewEngine takes its configuration and the collaborating engines and
// returns the trading core. The fee collaborators may both be nil.
func NewEngine(
	log *logging.Logger,
	config Config,
	collateralEngine *collateral.Engine,
	settlementEngine *settlement.Engine,
	feeCalculator FeeCalculator,
	feeCollector FeeCollector,
) *Engine {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:           log,
		config:        config,
		collateral:    collateralEngine,
		settlement:    settlementEngine,
		feeCalculator: feeCalculator,
		feeCollector:  feeCollector,
		markets:       map[string]*Market{},
		orderToEvent:  map[types.OrderID]string{},
	}
}

// AddEvent registers an event with the engine and with the funding
// ledger's complete-set registry, and spins up its books.
func (e *Engine) AddEvent(eventID string, outcomes uint32, asset string) error {
	if _, ok := e.markets[eventID]; ok {
		return types.ErrEventAlreadyRegistered
	}
	// the ledger validates the outcome count and the asset
	if err := e.collateral.RegisterEvent(eventID, outcomes, asset); err != nil {
		return err
	}

	event := &types.Event{
		ID:       eventID,
		Outcomes: outcomes,
		Asset:    asset,
	}
	e.markets[eventID] = NewMarket(
		e.log, e.config, event, e.collateral, e.settlement,
		e.feeCalculator, e.feeCollector)

	e.log.Info("event added",
		logging.EventID(eventID),
		logging.Uint32("outcomes", outcomes),
		logging.AssetID(asset))
	return nil
}

// SubmitOrder places a limit order for one outcome of an event and runs it
// against the book. The returned confirmation carries the order in its
// final state and the trades it produced.
func (e *Engine) SubmitOrder(
	party, eventID string,
	outcome uint32,
	side types.Side,
	price *num.Uint,
	size uint64,
) (*types.OrderConfirmation, error) {
	market, ok := e.markets[eventID]
	if !ok {
		metrics.OrderCounterInc(eventID, "rejected")
		return nil, types.ErrUnknownEvent
	}

	order := &types.Order{
		ID:        types.OrderID(e.lastOrderID + 1),
		Event:     eventID,
		Outcome:   outcome,
		Party:     party,
		Side:      side,
		Price:     price,
		Size:      size,
		Remaining: size,
		Status:    types.OrderStatusPending,
		Asset:     market.event.Asset,
		CreatedAt: e.lastSeq + 1,
	}

	conf, err := market.SubmitOrder(order)
	if err != nil {
		metrics.OrderCounterInc(eventID, "rejected")
		return nil, err
	}

	// the ID and sequence are burnt only once the order is accepted
	e.lastOrderID++
	e.lastSeq++
	e.orderToEvent[order.ID] = eventID
	return conf, nil
}

// CancelOrder removes a party's live order from its book and releases
// whatever is still locked for it.
func (e *Engine) CancelOrder(party string, orderID types.OrderID) (*types.Order, error) {
	eventID, ok := e.orderToEvent[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return e.markets[eventID].CancelOrder(party, orderID)
}

// SettleEvent resolves an event on its winning outcome, force-cancelling
// resting orders and paying the prize pool out. Resolver-only, once per
// event.
func (e *Engine) SettleEvent(eventID string, winningOutcome uint32) error {
	market, ok := e.markets[eventID]
	if !ok {
		return types.ErrUnknownEvent
	}
	return market.Settle(winningOutcome)
}

// MintSet exchanges collateral for a complete set of an event's outcome
// shares.
func (e *Engine) MintSet(party, eventID string, size uint64) (*types.Transfer, error) {
	market, ok := e.markets[eventID]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	return market.MintSet(party, size)
}

// BurnSet exchanges a complete set of an event's outcome shares back into
// collateral.
func (e *Engine) BurnSet(party, eventID string, size uint64) (*types.Transfer, error) {
	market, ok := e.markets[eventID]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	return market.BurnSet(party, size)
}

// Deposit credits a party's available balance in the funding ledger.
func (e *Engine) Deposit(party, asset string, amount *num.Uint) (*types.Transfer, error) {
	return e.collateral.Deposit(party, asset, amount)
}

// Withdraw debits a party's available balance in the funding ledger.
func (e *Engine) Withdraw(party, asset string, amount *num.Uint) (*types.Transfer, error) {
	return e.collateral.Withdraw(party, asset, amount)
}

// ListEvents returns the IDs of every registered event, sorted.
func (e *Engine) ListEvents() []string {
	ids := maps.Keys(e.markets)
	slices.Sort(ids)
	return ids
}

// GetOrder returns a copy of any order the engine has accepted.
func (e *Engine) GetOrder(orderID types.OrderID) (*types.Order, error) {
	eventID, ok := e.orderToEvent[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return e.markets[eventID].GetOrder(orderID)
}

// GetPosition returns a party's book-side position for one outcome.
func (e *Engine) GetPosition(eventID string, outcome uint32, party string) (uint64, error) {
	market, ok := e.markets[eventID]
	if !ok {
		return 0, types.ErrUnknownEvent
	}
	return market.GetPosition(outcome, party)
}

// GetBestBid returns the best bid price and volume for one outcome.
func (e *Engine) GetBestBid(eventID string, outcome uint32) (*num.Uint, uint64, error) {
	market, ok := e.markets[eventID]
	if !ok {
		return nil, 0, types.ErrUnknownEvent
	}
	return market.BestBid(outcome)
}

// GetBestAsk returns the best ask price and volume for one outcome.
func (e *Engine) GetBestAsk(eventID string, outcome uint32) (*num.Uint, uint64, error) {
	market, ok := e.markets[eventID]
	if !ok {
		return nil, 0, types.ErrUnknownEvent
	}
	return market.BestAsk(outcome)
}

// GetAvailableBalance returns a party's available funding-ledger balance.
func (e *Engine) GetAvailableBalance(party, asset string) *num.Uint {
	return e.collateral.GetAvailableBalance(party, asset)
}

// GetPrizePool returns the prize pool backing an event's complete sets.
func (e *Engine) GetPrizePool(eventID string) (*num.Uint, error) {
	return e.collateral.GetPrizePool(eventID)
}

// GetLongPosition returns a party's funding-ledger long position, which
// excludes shares locked under resting sell orders.
func (e *Engine) GetLongPosition(eventID string, outcome uint32, party string) (uint64, error) {
	return e.collateral.GetLongPosition(eventID, outcome, party)
}
