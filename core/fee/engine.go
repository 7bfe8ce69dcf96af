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

package fee

import (
	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"
	"code.ceresmarkets.io/ceres/logging"
)

// Engine is the default fee collaborator: it sizes fees with one decimal
// factor per category, flooring the result, and keeps a running total of
// what it was asked to collect per event and category. The matching engine
// treats it as optional, a nil collaborator simply means free trading.
type Engine struct {
	log *logging.Logger

	placementFactor num.Decimal
	tradeFactor     num.Decimal

	// collected[event][category] running totals, recorded only, the
	// funding ledger keeps custody of the underlying funds
	collected map[string]map[types.FeeCategory]*num.Uint
}

// New instantiates a new fee engine from its configured factors.
func New(log *logging.Logger, config Config) (*Engine, error) {
	// setup logger
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	placementFactor, err := num.DecimalFromString(config.PlacementFeeFactor)
	if err != nil {
		return nil, err
	}
	tradeFactor, err := num.DecimalFromString(config.TradeFeeFactor)
	if err != nil {
		return nil, err
	}

	return &Engine{
		log:             log,
		placementFactor: placementFactor,
		tradeFactor:     tradeFactor,
		collected:       map[string]map[types.FeeCategory]*num.Uint{},
	}, nil
}

// Calculate returns the fee for the given size, floored to whole units.
func (e *Engine) Calculate(size uint64, category types.FeeCategory) uint64 {
	factor := e.factor(category)
	if factor.IsZero() {
		return 0
	}
	// go through the unsigned constructor, sizes above MaxInt64 must not
	// flip sign
	fee := factor.Mul(num.DecimalFromUint(num.NewUint(size))).Floor()
	return fee.BigInt().Uint64()
}

// Collect records a fee charge against a party. The funds themselves stay
// in the funding ledger, this is the accounting side only.
func (e *Engine) Collect(asset, party string, amount uint64, eventID string, category types.FeeCategory) {
	if amount == 0 {
		return
	}
	byCategory, ok := e.collected[eventID]
	if !ok {
		byCategory = map[types.FeeCategory]*num.Uint{}
		e.collected[eventID] = byCategory
	}
	total, ok := byCategory[category]
	if !ok {
		total = num.UintZero()
		byCategory[category] = total
	}
	total.Add(total, num.NewUint(amount))

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("fee collected",
			logging.PartyID(party),
			logging.AssetID(asset),
			logging.EventID(eventID),
			logging.Uint64("amount", amount),
			logging.String("category", category.String()))
	}
}

// TotalCollected returns the running total recorded for one event and
// category.
func (e *Engine) TotalCollected(eventID string, category types.FeeCategory) *num.Uint {
	byCategory, ok := e.collected[eventID]
	if !ok {
		return num.UintZero()
	}
	total, ok := byCategory[category]
	if !ok {
		return num.UintZero()
	}
	return total.Clone()
}

func (e *Engine) factor(category types.FeeCategory) num.Decimal {
	if category == types.FeeOnTrade {
		return e.tradeFactor
	}
	return e.placementFactor
}
