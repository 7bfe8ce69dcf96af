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

package settlement

import (
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
)

// MarketPosition is the part of a position the settlement engine needs.
type MarketPosition interface {
	Party() string
	Size() uint64
}

// Engine turns a prize pool and the winning outcome's positions into
// payout transfers. Pure computation, applying the transfers to balances
// is the funding ledger's job.
type Engine struct {
	log *logging.Logger
}

// New instantiates a new settlement engine.
func New(log *logging.Logger, config Config) *Engine {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log: log,
	}
}

// Distribute computes each winner's share of the pool,
// floor(pool * position / total), in the order the positions are given.
// Zero-size positions are skipped, winners whose share floors to zero
// still get a transfer so the ledger zeroes their position. The undistributed
// remainder is bounded by the number of winners minus one.
func (e *Engine) Distribute(eventID, asset string, pool *num.Uint, positions []MarketPosition) []*types.Transfer {
	var total uint64
	for _, pos := range positions {
		total += pos.Size()
	}
	if total == 0 || pool.IsZero() {
		e.log.Warn("nothing to distribute",
			logging.EventID(eventID),
			logging.BigUint("pool", pool),
			logging.Uint64("total-winning", total))
		return nil
	}

	totalU := num.NewUint(total)
	transfers := make([]*types.Transfer, 0, len(positions))
	paid := num.UintZero()
	for _, pos := range positions {
		if pos.Size() == 0 {
			continue
		}
		// payout = pool * size / total, floored
		payout := num.NewUint(pos.Size())
		payout.Mul(payout, pool)
		payout.Div(payout, totalU)
		paid.Add(paid, payout)

		transfers = append(transfers, &types.Transfer{
			Party:  pos.Party(),
			Asset:  asset,
			Event:  eventID,
			Amount: payout,
			Type:   types.TransferTypePrizePayout,
		})
	}

	if paid.GT(pool) {
		e.log.Panic("settlement distributed more than the pool",
			logging.EventID(eventID),
			logging.BigUint("pool", pool),
			logging.BigUint("paid", paid))
	}

	if e.log.GetLevel() == logging.DebugLevel {
		dust := num.UintZero().Sub(pool, paid)
		e.log.Debug("distribution computed",
			logging.EventID(eventID),
			logging.Int("winners", len(transfers)),
			logging.BigUint("paid", paid),
			logging.BigUint("dust", dust))
	}

	return transfers
}
