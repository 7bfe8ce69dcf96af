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

package collateral

import (
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
)

// Engine is the funding ledger. It owns every party's available balance per
// asset, the per-order locked amounts, the per-(event, outcome) long
// positions and the per-event prize pool. It knows nothing about matching:
// callers drive it through lock/unlock/settle/mint/burn/distribute
// primitives, and every primitive either applies in full or returns an
// error having changed nothing.
type Engine struct {
	log *logging.Logger

	// party -> asset -> available balance
	accounts map[string]map[string]*num.Uint
	events   map[string]*eventFunds
	locks    map[types.OrderID]*orderLock
}

// eventFunds is the complete-set registry entry for one event: the prize
// pool backing all outstanding sets and the long positions per outcome.
type eventFunds struct {
	outcomes uint32
	asset    string
	settled  bool
	pool     *num.Uint
	// positions[outcome][party] = long shares, excluding shares locked
	// under resting sell orders
	positions []map[string]uint64
}

// orderLock is the funds held against one live order: quote for a buy,
// outcome shares for a sell. Decremented as fills consume it, the remainder
// goes back on release.
type orderLock struct {
	party   string
	event   string
	outcome uint32
	side    types.Side
	asset   string
	quote   *num.Uint
	shares  uint64
}

// New instantiates a new collateral engine.
func New(log *logging.Logger, config Config) *Engine {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:      log,
		accounts: map[string]map[string]*num.Uint{},
		events:   map[string]*eventFunds{},
		locks:    map[types.OrderID]*orderLock{},
	}
}

// Deposit credits a party's available balance.
func (e *Engine) Deposit(party, asset string, amount *num.Uint) (*types.Transfer, error) {
	if amount == nil || amount.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	balance := e.getAccount(party, asset)
	balance.Add(balance, amount)

	return &types.Transfer{
		Party:  party,
		Asset:  asset,
		Amount: amount.Clone(),
		Type:   types.TransferTypeDeposit,
	}, nil
}

// Withdraw debits a party's available balance. Locked funds cannot be
// withdrawn.
func (e *Engine) Withdraw(party, asset string, amount *num.Uint) (*types.Transfer, error) {
	if amount == nil || amount.IsZero() {
		return nil, types.ErrInvalidAmount
	}
	balance := e.getAccount(party, asset)
	if balance.LT(amount) {
		return nil, types.ErrInsufficientBalance
	}
	balance.Sub(balance, amount)

	return &types.Transfer{
		Party:  party,
		Asset:  asset,
		Amount: amount.Clone(),
		Type:   types.TransferTypeWithdraw,
	}, nil
}

// GetAvailableBalance returns a party's available balance for an asset.
func (e *Engine) GetAvailableBalance(party, asset string) *num.Uint {
	assets, ok := e.accounts[party]
	if !ok {
		return num.UintZero()
	}
	balance, ok := assets[asset]
	if !ok {
		return num.UintZero()
	}
	return balance.Clone()
}

// RegisterEvent creates the complete-set registry for an event: its outcome
// cardinality, its settlement asset and an empty prize pool. One-time per
// event ID.
func (e *Engine) RegisterEvent(eventID string, outcomes uint32, asset string) error {
	if _, ok := e.events[eventID]; ok {
		return types.ErrEventAlreadyRegistered
	}
	if outcomes == 0 || outcomes > types.MaxOutcomes {
		return types.ErrInvalidOutcomeCount
	}
	if len(asset) == 0 {
		return types.ErrInvalidAsset
	}

	positions := make([]map[string]uint64, outcomes)
	for i := range positions {
		positions[i] = map[string]uint64{}
	}
	e.events[eventID] = &eventFunds{
		outcomes:  outcomes,
		asset:     asset,
		pool:      num.UintZero(),
		positions: positions,
	}

	e.log.Info("event registered with the funding ledger",
		logging.EventID(eventID),
		logging.Uint32("outcomes", outcomes),
		logging.AssetID(asset))
	return nil
}

// GetEventAsset returns the settlement asset fixed at registration.
func (e *Engine) GetEventAsset(eventID string) (string, error) {
	ev, ok := e.events[eventID]
	if !ok {
		return "", types.ErrUnknownEvent
	}
	return ev.asset, nil
}

// GetPrizePool returns the prize pool backing an event's complete sets.
func (e *Engine) GetPrizePool(eventID string) (*num.Uint, error) {
	ev, ok := e.events[eventID]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	return ev.pool.Clone(), nil
}

// GetLongPosition returns a party's unlocked long position in one outcome.
func (e *Engine) GetLongPosition(eventID string, outcome uint32, party string) (uint64, error) {
	ev, ok := e.events[eventID]
	if !ok {
		return 0, types.ErrUnknownEvent
	}
	if outcome >= ev.outcomes {
		return 0, types.ErrInvalidOutcome
	}
	return ev.positions[outcome][party], nil
}

// LockOrderFunds moves the funds backing a new order out of the party's
// reach: quote for a buy, outcome shares for a sell, both inclusive of the
// fee headroom. Fails without touching anything if the party cannot cover
// the lock.
func (e *Engine) LockOrderFunds(order *types.Order, fee uint64) (*types.Transfer, error) {
	ev, ok := e.events[order.Event]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	if order.Outcome >= ev.outcomes {
		return nil, types.ErrInvalidOutcome
	}
	if _, ok := e.locks[order.ID]; ok {
		e.log.Panic("an order lock already exists for this ID",
			logging.Order(*order))
	}

	lock := &orderLock{
		party:   order.Party,
		event:   order.Event,
		outcome: order.Outcome,
		side:    order.Side,
		asset:   ev.asset,
		quote:   num.UintZero(),
	}

	transfer := &types.Transfer{
		Party: order.Party,
		Asset: ev.asset,
		Event: order.Event,
		Type:  types.TransferTypeOrderLock,
	}

	if order.Side == types.SideBuy {
		quote := quoteAmount(order.Size+fee, order.Price)
		balance := e.getAccount(order.Party, ev.asset)
		if balance.LT(quote) {
			return nil, types.ErrInsufficientBalance
		}
		balance.Sub(balance, quote)
		lock.quote = quote.Clone()
		transfer.Amount = quote
	} else {
		shares := order.Size + fee
		held := ev.positions[order.Outcome][order.Party]
		if held < shares {
			return nil, types.ErrInsufficientPosition
		}
		ev.positions[order.Outcome][order.Party] = held - shares
		lock.shares = shares
		transfer.Amount = num.NewUint(shares)
	}

	e.locks[order.ID] = lock
	return transfer, nil
}

// ReleaseOrderFunds returns whatever is still locked for an order and drops
// the lock. Used on cancellation and when an order reaches a terminal
// state with fee headroom left over.
func (e *Engine) ReleaseOrderFunds(orderID types.OrderID) (*types.Transfer, error) {
	lock, ok := e.locks[orderID]
	if !ok {
		return nil, types.ErrOrderNotFound
	}
	delete(e.locks, orderID)

	ev := e.events[lock.event]
	if ev == nil {
		e.log.Panic("order lock references an unregistered event",
			logging.OrderID(orderID),
			logging.EventID(lock.event))
	}

	transfer := &types.Transfer{
		Party: lock.party,
		Asset: lock.asset,
		Event: lock.event,
		Type:  types.TransferTypeOrderUnlock,
	}

	if lock.side == types.SideBuy {
		if lock.quote.IsZero() {
			return nil, nil
		}
		balance := e.getAccount(lock.party, lock.asset)
		balance.Add(balance, lock.quote)
		transfer.Amount = lock.quote.Clone()
		return transfer, nil
	}

	if lock.shares == 0 {
		return nil, nil
	}
	ev.positions[lock.outcome][lock.party] += lock.shares
	transfer.Amount = num.NewUint(lock.shares)
	return transfer, nil
}

// SettleMatch applies one trade to the ledger: the buyer's order lock pays
// size*price/PricePrecision, the buyer gains the traded shares, the
// seller's share lock gives up the shares and the seller's available
// balance receives the payment. The caller has already validated the trade
// against the book, so any inconsistency found here is fatal.
func (e *Engine) SettleMatch(trade *types.Trade) []*types.Transfer {
	ev, ok := e.events[trade.Event]
	if !ok || trade.Outcome >= ev.outcomes {
		e.log.Panic("trade references an unregistered event or outcome",
			logging.Trade(*trade))
	}

	buyLock, ok := e.locks[trade.BuyOrder]
	if !ok {
		e.log.Panic("no order lock for the buy side of a trade",
			logging.Trade(*trade))
	}
	sellLock, ok := e.locks[trade.SellOrder]
	if !ok {
		e.log.Panic("no order lock for the sell side of a trade",
			logging.Trade(*trade))
	}
	if buyLock.event != trade.Event || buyLock.outcome != trade.Outcome ||
		sellLock.event != trade.Event || sellLock.outcome != trade.Outcome {
		e.log.Panic("matched orders come from different events or outcomes",
			logging.Trade(*trade),
			logging.EventID(buyLock.event),
			logging.EventID(sellLock.event))
	}
	if buyLock.party != trade.Buyer || sellLock.party != trade.Seller {
		e.log.Panic("order locks do not belong to the trade parties",
			logging.Trade(*trade))
	}

	payment := quoteAmount(trade.Size, trade.Price)
	if buyLock.quote.LT(payment) {
		e.log.Panic("buy order lock cannot cover the trade payment",
			logging.Trade(*trade),
			logging.BigUint("locked", buyLock.quote),
			logging.BigUint("payment", payment))
	}
	if sellLock.shares < trade.Size {
		e.log.Panic("sell order lock cannot cover the traded shares",
			logging.Trade(*trade),
			logging.Uint64("locked", sellLock.shares))
	}

	buyLock.quote.Sub(buyLock.quote, payment)
	ev.positions[trade.Outcome][trade.Buyer] += trade.Size
	sellLock.shares -= trade.Size
	balance := e.getAccount(trade.Seller, ev.asset)
	balance.Add(balance, payment)

	return []*types.Transfer{
		{
			Party:  trade.Buyer,
			Asset:  ev.asset,
			Event:  trade.Event,
			Amount: payment.Clone(),
			Type:   types.TransferTypeTradePayment,
		},
		{
			Party:  trade.Seller,
			Asset:  ev.asset,
			Event:  trade.Event,
			Amount: payment.Clone(),
			Type:   types.TransferTypeTradePayment,
		},
	}
}

// MintCompleteSet exchanges size*MaxPrice/PricePrecision of the event's
// asset for size shares of every outcome, growing the prize pool by the
// same amount.
func (e *Engine) MintCompleteSet(party, eventID string, size uint64) (*types.Transfer, error) {
	ev, ok := e.events[eventID]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	if ev.settled {
		return nil, types.ErrEventSettled
	}
	if size == 0 {
		return nil, types.ErrInvalidAmount
	}

	cost := quoteAmount(size, num.NewUint(types.MaxPrice))
	balance := e.getAccount(party, ev.asset)
	if balance.LT(cost) {
		return nil, types.ErrInsufficientBalance
	}

	balance.Sub(balance, cost)
	for i := range ev.positions {
		ev.positions[i][party] += size
	}
	ev.pool.Add(ev.pool, cost)

	return &types.Transfer{
		Party:  party,
		Asset:  ev.asset,
		Event:  eventID,
		Amount: cost,
		Type:   types.TransferTypeMint,
	}, nil
}

// BurnCompleteSet is the inverse of MintCompleteSet: size shares of every
// outcome go back in, the asset comes out and the pool shrinks.
func (e *Engine) BurnCompleteSet(party, eventID string, size uint64) (*types.Transfer, error) {
	ev, ok := e.events[eventID]
	if !ok {
		return nil, types.ErrUnknownEvent
	}
	if ev.settled {
		return nil, types.ErrEventSettled
	}
	if size == 0 {
		return nil, types.ErrInvalidAmount
	}
	for i := range ev.positions {
		if ev.positions[i][party] < size {
			return nil, types.ErrInsufficientPosition
		}
	}
	refund := quoteAmount(size, num.NewUint(types.MaxPrice))
	if ev.pool.LT(refund) {
		return nil, types.ErrInsufficientPrizePool
	}

	for i := range ev.positions {
		ev.positions[i][party] -= size
	}
	ev.pool.Sub(ev.pool, refund)
	balance := e.getAccount(party, ev.asset)
	balance.Add(balance, refund)

	return &types.Transfer{
		Party:  party,
		Asset:  ev.asset,
		Event:  eventID,
		Amount: refund,
		Type:   types.TransferTypeBurn,
	}, nil
}

// DistributePrizePool applies the settlement payouts: each winner's
// available balance receives its share, winners' long positions in the
// winning outcome are zeroed, the pool is zeroed and the event is marked
// settled. The payouts come from the settlement engine which guarantees
// their sum does not exceed the pool, anything else is fatal.
func (e *Engine) DistributePrizePool(eventID string, winningOutcome uint32, payouts []*types.Transfer) error {
	ev, ok := e.events[eventID]
	if !ok {
		return types.ErrUnknownEvent
	}
	if ev.settled {
		return types.ErrEventSettled
	}
	if winningOutcome >= ev.outcomes {
		return types.ErrInvalidOutcome
	}

	total := num.UintZero()
	for _, payout := range payouts {
		total.Add(total, payout.Amount)
	}
	if ev.pool.LT(total) {
		e.log.Panic("settlement payouts exceed the prize pool",
			logging.EventID(eventID),
			logging.BigUint("pool", ev.pool),
			logging.BigUint("payouts", total))
	}

	for _, payout := range payouts {
		balance := e.getAccount(payout.Party, ev.asset)
		balance.Add(balance, payout.Amount)
		ev.positions[winningOutcome][payout.Party] = 0
	}

	// the integer-division dust is burnt with the rest of the pool
	ev.pool = num.UintZero()
	ev.settled = true

	e.log.Info("prize pool distributed",
		logging.EventID(eventID),
		logging.Uint32("winning-outcome", winningOutcome),
		logging.BigUint("paid", total),
		logging.Int("winners", len(payouts)))
	return nil
}

// IsSettled reports whether the funding ledger considers the event settled.
func (e *Engine) IsSettled(eventID string) bool {
	ev, ok := e.events[eventID]
	return ok && ev.settled
}

func (e *Engine) getAccount(party, asset string) *num.Uint {
	assets, ok := e.accounts[party]
	if !ok {
		assets = map[string]*num.Uint{}
		e.accounts[party] = assets
	}
	balance, ok := assets[asset]
	if !ok {
		balance = num.UintZero()
		assets[asset] = balance
	}
	return balance
}

// quoteAmount converts an amount of shares at a price into quote units,
// flooring the division.
func quoteAmount(size uint64, price *num.Uint) *num.Uint {
	quote := num.NewUint(size)
	quote.Mul(quote, price)
	return quote.Div(quote, num.NewUint(types.PricePrecision))
}
