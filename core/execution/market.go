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
	"code.ceresmarkets.io/ceres/core/matching"
	"code.ceresmarkets.io/ceres/core/positions"
	"code.ceresmarkets.io/ceres/core/settlement"
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
	"code.ceresmarkets.io/ceres/metrics"
)

// Market is one registered event: an order book and a position ledger per
// outcome, plus every order the event has ever seen. All funds movements go
// through the shared collateral engine.
type Market struct {
	log *logging.Logger

	event      *types.Event
	books      []*matching.OrderBook
	positions  []*positions.Engine
	collateral *collateral.Engine
	settlement *settlement.Engine

	feeCalculator FeeCalculator
	feeCollector  FeeCollector

	// orders holds every order of this market by ID, terminal ones
	// included, they are never deleted
	orders map[types.OrderID]*types.Order
}

// NewMarket instantiates the books and position ledgers for a freshly
// registered event.
func NewMarket(
	log *logging.Logger,
	config Config,
	event *types.Event,
	collateralEngine *collateral.Engine,
	settlementEngine *settlement.Engine,
	feeCalculator FeeCalculator,
	feeCollector FeeCollector,
) *Market {
	books := make([]*matching.OrderBook, event.Outcomes)
	pos := make([]*positions.Engine, event.Outcomes)
	for i := uint32(0); i < event.Outcomes; i++ {
		books[i] = matching.NewOrderBook(log, config.Matching, event.ID, i)
		pos[i] = positions.New(log, config.Positions, event.ID, i)
	}

	return &Market{
		log:           log,
		event:         event,
		books:         books,
		positions:     pos,
		collateral:    collateralEngine,
		settlement:    settlementEngine,
		feeCalculator: feeCalculator,
		feeCollector:  feeCollector,
		orders:        map[types.OrderID]*types.Order{},
	}
}

// SubmitOrder validates, funds and matches a new order. Everything after
// the funds lock is infallible, so a rejected order leaves no state behind.
func (m *Market) SubmitOrder(order *types.Order) (*types.OrderConfirmation, error) {
	if m.event.Settled {
		return nil, types.ErrEventSettled
	}
	if order.Outcome >= m.event.Outcomes {
		return nil, types.ErrInvalidOutcome
	}
	if order.Side != types.SideBuy && order.Side != types.SideSell {
		return nil, types.ErrInvalidOrderSide
	}
	if order.Price == nil || order.Price.IsZero() || order.Price.GTUint64(types.MaxPrice) {
		return nil, types.ErrInvalidOrderPrice
	}
	if mod := num.UintZero(); !mod.Mod(order.Price, num.NewUint(types.TickSize)).IsZero() {
		return nil, types.ErrPriceNotInTickSize
	}
	if order.Size == 0 {
		return nil, types.ErrInvalidOrderSize
	}

	fee := m.calculateFee(order.Size, types.FeeOnPlacement)

	// the lock is the last thing that can fail, nothing is mutated before
	// it and nothing after it can reject
	if _, err := m.collateral.LockOrderFunds(order, fee); err != nil {
		return nil, err
	}
	m.collectFee(order.Party, fee, types.FeeOnPlacement)

	conf, err := m.books[order.Outcome].SubmitOrder(order)
	if err != nil {
		// the book re-checks what was validated above
		m.log.Panic("Order book rejected a validated and funded order",
			logging.Order(*order),
			logging.Error(err))
	}

	for _, trade := range conf.Trades {
		m.applyTrade(trade)
	}

	// fully filled orders give back their fee headroom, resting orders
	// keep their lock until they leave the book
	if order.Status == types.OrderStatusFilled {
		m.releaseOrderFunds(order.ID)
	}
	for _, passive := range conf.PassiveOrdersAffected {
		if passive.Status == types.OrderStatusFilled {
			m.releaseOrderFunds(passive.ID)
		}
	}

	m.orders[order.ID] = order
	metrics.OrderCounterInc(m.event.ID, "accepted")
	metrics.TradeCounterAdd(m.event.ID, len(conf.Trades))
	metrics.RestingOrdersGaugeSet(m.event.ID, m.countRestingOrders())
	return conf, nil
}

// CancelOrder takes a live order off the book and gives its remaining lock
// back. Only the order's owner can cancel, and only while the event is
// unsettled.
func (m *Market) CancelOrder(party string, orderID types.OrderID) (*types.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	if order.Party != party {
		return nil, types.ErrNotOrderOwner
	}
	if m.event.Settled {
		return nil, types.ErrEventSettled
	}
	if order.Status.IsTerminal() {
		return nil, types.ErrOrderNotCancellable
	}

	if _, err := m.books[order.Outcome].CancelOrder(orderID); err != nil {
		m.log.Panic("Live order not found in its book",
			logging.Order(*order),
			logging.Error(err))
	}
	m.releaseOrderFunds(orderID)

	metrics.RestingOrdersGaugeSet(m.event.ID, m.countRestingOrders())
	return order, nil
}

// Settle resolves the event: force-cancel every resting order, then pay the
// prize pool to the winning outcome's holders pro rata. Runs once.
func (m *Market) Settle(winningOutcome uint32) error {
	if m.event.Settled {
		return types.ErrEventSettled
	}
	if winningOutcome >= m.event.Outcomes {
		return types.ErrInvalidOutcome
	}

	// force-cancel releases every lock exactly as CancelOrder would
	for _, book := range m.books {
		for _, order := range book.CancelAllOrders() {
			m.releaseOrderFunds(order.ID)
		}
	}

	// with no locks left the two position ledgers must agree
	winners := make([]settlement.MarketPosition, 0)
	for _, pos := range m.positions[winningOutcome].Positions() {
		ledgerSize, err := m.collateral.GetLongPosition(m.event.ID, winningOutcome, pos.Party())
		if err != nil || ledgerSize != pos.Size() {
			m.log.Panic("Position ledgers diverged at settlement",
				logging.EventID(m.event.ID),
				logging.PartyID(pos.Party()),
				logging.Uint64("book-position", pos.Size()),
				logging.Uint64("ledger-position", ledgerSize),
				logging.Error(err))
		}
		if pos.Size() > 0 {
			winners = append(winners, pos)
		}
	}

	pool, err := m.collateral.GetPrizePool(m.event.ID)
	if err != nil {
		return err
	}

	payouts := m.settlement.Distribute(m.event.ID, m.event.Asset, pool, winners)
	if err := m.collateral.DistributePrizePool(m.event.ID, winningOutcome, payouts); err != nil {
		return err
	}

	// mirror the ledger, winners' winning-outcome positions are spent
	for _, payout := range payouts {
		size := m.positions[winningOutcome].GetSize(payout.Party)
		if !m.positions[winningOutcome].Remove(payout.Party, size) {
			m.log.Panic("Failed to clear a winner's settled position",
				logging.EventID(m.event.ID),
				logging.PartyID(payout.Party))
		}
	}

	m.event.Settled = true
	m.event.WinningOutcome = winningOutcome

	metrics.SettlementCounterInc()
	metrics.RestingOrdersGaugeSet(m.event.ID, 0)

	m.log.Info("event settled",
		logging.EventID(m.event.ID),
		logging.Uint32("winning-outcome", winningOutcome),
		logging.BigUint("pool", pool),
		logging.Int("winners", len(payouts)))
	return nil
}

// MintSet delegates the mint to the funding ledger and mirrors the new
// shares into every outcome's position ledger.
func (m *Market) MintSet(party string, size uint64) (*types.Transfer, error) {
	if m.event.Settled {
		return nil, types.ErrEventSettled
	}
	transfer, err := m.collateral.MintCompleteSet(party, m.event.ID, size)
	if err != nil {
		return nil, err
	}
	for _, pos := range m.positions {
		pos.Deposit(party, size)
	}
	return transfer, nil
}

// BurnSet delegates the burn to the funding ledger and mirrors the spent
// shares out of every outcome's position ledger.
func (m *Market) BurnSet(party string, size uint64) (*types.Transfer, error) {
	if m.event.Settled {
		return nil, types.ErrEventSettled
	}
	transfer, err := m.collateral.BurnCompleteSet(party, m.event.ID, size)
	if err != nil {
		return nil, err
	}
	for i, pos := range m.positions {
		if !pos.Remove(party, size) {
			m.log.Panic("Position ledgers diverged on burn",
				logging.EventID(m.event.ID),
				logging.PartyID(party),
				logging.Uint32("outcome", uint32(i)),
				logging.Uint64("size", size))
		}
	}
	return transfer, nil
}

// GetOrder returns any order the market has seen, live or terminal.
func (m *Market) GetOrder(orderID types.OrderID) (*types.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	return order.Clone(), nil
}

// GetPosition returns a party's book-side position for one outcome,
// resting sell locks included.
func (m *Market) GetPosition(outcome uint32, party string) (uint64, error) {
	if outcome >= m.event.Outcomes {
		return 0, types.ErrInvalidOutcome
	}
	return m.positions[outcome].GetSize(party), nil
}

// BestBid returns the best bid price and its resting volume for one outcome.
func (m *Market) BestBid(outcome uint32) (*num.Uint, uint64, error) {
	if outcome >= m.event.Outcomes {
		return nil, 0, types.ErrInvalidOutcome
	}
	return m.books[outcome].BestBidPriceAndVolume()
}

// BestAsk returns the best ask price and its resting volume for one outcome.
func (m *Market) BestAsk(outcome uint32) (*num.Uint, uint64, error) {
	if outcome >= m.event.Outcomes {
		return nil, 0, types.ErrInvalidOutcome
	}
	return m.books[outcome].BestOfferPriceAndVolume()
}

// applyTrade drives the funding ledger and the position ledger for one
// trade, and splits the trade fee between the two parties.
func (m *Market) applyTrade(trade *types.Trade) {
	matchFee := m.calculateFee(trade.Size, types.FeeOnTrade)
	buyerFee := matchFee / 2
	sellerFee := matchFee - buyerFee
	m.collectFee(trade.Buyer, buyerFee, types.FeeOnTrade)
	m.collectFee(trade.Seller, sellerFee, types.FeeOnTrade)

	m.collateral.SettleMatch(trade)
	m.positions[trade.Outcome].Update(trade)

	if m.log.GetLevel() == logging.DebugLevel {
		m.log.Debug("trade executed", logging.Trade(*trade))
	}
}

func (m *Market) calculateFee(size uint64, category types.FeeCategory) uint64 {
	if m.feeCalculator == nil {
		return 0
	}
	return m.feeCalculator.Calculate(size, category)
}

func (m *Market) collectFee(party string, amount uint64, category types.FeeCategory) {
	if m.feeCollector == nil || amount == 0 {
		return
	}
	m.feeCollector.Collect(m.event.Asset, party, amount, m.event.ID, category)
}

func (m *Market) releaseOrderFunds(orderID types.OrderID) {
	if _, err := m.collateral.ReleaseOrderFunds(orderID); err != nil {
		m.log.Panic("Failed to release order funds",
			logging.OrderID(orderID),
			logging.Error(err))
	}
}

func (m *Market) countRestingOrders() int64 {
	var count int64
	for _, book := range m.books {
		count += book.GetTotalNumberOfOrders()
	}
	return count
}
