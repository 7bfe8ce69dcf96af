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

package types

import "fmt"

const (
	// MaxPrice is the upper bound on any order price, expressed in price
	// units. A share of the winning outcome redeems at this value.
	MaxPrice uint64 = 10000

	// TickSize is the required granularity for order prices. Every price
	// must be a strictly positive multiple of it.
	TickSize uint64 = 10

	// PricePrecision converts between price units and quote units:
	// quote = size * price / PricePrecision.
	PricePrecision uint64 = 10000

	// MaxOutcomes bounds the number of outcomes a single event can carry.
	MaxOutcomes uint32 = 32
)

// Event is a registered multi-outcome event. Exactly one of its outcomes
// resolves as the winner when the event settles.
type Event struct {
	ID             string
	Outcomes       uint32
	Asset          string
	Settled        bool
	WinningOutcome uint32
}

func (e Event) Clone() *Event {
	return &e
}

func (e Event) String() string {
	return fmt.Sprintf(
		"ID(%s) outcomes(%d) asset(%s) settled(%v) winningOutcome(%d)",
		e.ID,
		e.Outcomes,
		e.Asset,
		e.Settled,
		e.WinningOutcome,
	)
}
