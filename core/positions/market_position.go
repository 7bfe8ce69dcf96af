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

import "fmt"

// MarketPosition is a party's long position in one outcome of one event.
// Positions are shares, always non-negative: selling more than held is
// prevented upstream by the funding ledger's share lock.
type MarketPosition struct {
	party string
	size  uint64
}

// Party returns the party holding this position.
func (p MarketPosition) Party() string {
	return p.party
}

// Size returns the number of shares held.
func (p MarketPosition) Size() uint64 {
	return p.size
}

func (p MarketPosition) String() string {
	return fmt.Sprintf("party(%s) size(%d)", p.party, p.size)
}
