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

package positions

import (
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/logging"
)

// Engine tracks long positions for one outcome of one event, updated trade
// by trade. It keeps a slice side by side with the lookup map so positions
// can be enumerated in the order parties first traded, which keeps
// settlement deterministic.
type Engine struct {
	log *logging.Logger

	event   string
	outcome uint32

	positions map[string]*MarketPosition
	// this is basically tracking all position to
	// not have to iterate over the map when returning positions.
	positionsCpy []*MarketPosition
}

// New instantiates a new positions engine.
func New(log *logging.Logger, config Config, event string, outcome uint32) *Engine {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:          log,
		event:        event,
		outcome:      outcome,
		positions:    map[string]*MarketPosition{},
		positionsCpy: []*MarketPosition{},
	}
}

// Update pushes the impact of a trade through both parties' positions: the
// buyer gains the traded size, the seller gives it up.
func (e *Engine) Update(trade *types.Trade) {
	buyer := e.getOrCreate(trade.Buyer)
	buyer.size += trade.Size

	seller := e.getOrCreate(trade.Seller)
	if seller.size < trade.Size {
		e.log.Panic("Seller position cannot cover the trade",
			logging.Trade(*trade),
			logging.PartyID(trade.Seller),
			logging.Uint64("position", seller.size))
	}
	seller.size -= trade.Size

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("Positions Updated for trade",
			logging.Trade(*trade),
			logging.String("buyer-position", buyer.String()),
			logging.String("seller-position", seller.String()))
	}
}

// Deposit credits shares to a party's position without a trade, used for
// complete-set mints.
func (e *Engine) Deposit(party string, size uint64) {
	e.getOrCreate(party).size += size
}

// Remove debits shares from a party's position without a trade, used for
// complete-set burns and settlement. Returns false if the position cannot
// cover the debit.
func (e *Engine) Remove(party string, size uint64) bool {
	pos, ok := e.positions[party]
	if !ok || pos.size < size {
		return false
	}
	pos.size -= size
	return true
}

// GetPositionByParty returns the position of a given party, or nil if the
// party never traded this outcome.
func (e *Engine) GetPositionByParty(party string) *MarketPosition {
	pos, ok := e.positions[party]
	if !ok {
		return nil
	}
	return pos
}

// GetSize returns the number of shares a party holds, zero for unknown
// parties.
func (e *Engine) GetSize(party string) uint64 {
	pos, ok := e.positions[party]
	if !ok {
		return 0
	}
	return pos.size
}

// Positions returns all the positions in the order parties first appeared.
// Zero-size positions are included, the caller filters as needed.
func (e *Engine) Positions() []*MarketPosition {
	return e.positionsCpy
}

func (e *Engine) getOrCreate(party string) *MarketPosition {
	pos, ok := e.positions[party]
	if !ok {
		pos = &MarketPosition{party: party}
		e.positions[party] = pos
		e.positionsCpy = append(e.positionsCpy, pos)
	}
	return pos
}
