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

import (
	"fmt"

	"code.ceresmarkets.io/ceres/libs/num"
)

// TransferType classifies a ledger movement.
type TransferType int8

const (
	TransferTypeUnspecified TransferType = iota
	TransferTypeDeposit
	TransferTypeWithdraw
	TransferTypeOrderLock
	TransferTypeOrderUnlock
	TransferTypeTradePayment
	TransferTypeMint
	TransferTypeBurn
	TransferTypePrizePayout
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeDeposit:
		return "deposit"
	case TransferTypeWithdraw:
		return "withdraw"
	case TransferTypeOrderLock:
		return "order-lock"
	case TransferTypeOrderUnlock:
		return "order-unlock"
	case TransferTypeTradePayment:
		return "trade-payment"
	case TransferTypeMint:
		return "mint"
	case TransferTypeBurn:
		return "burn"
	case TransferTypePrizePayout:
		return "prize-payout"
	default:
		return "unspecified"
	}
}

// Transfer is a single ledger movement, surfaced by the funding ledger so
// callers can audit what a mutation did to party balances.
type Transfer struct {
	Party  string
	Asset  string
	Event  string
	Amount *num.Uint
	Type   TransferType
}

func (t *Transfer) Clone() *Transfer {
	cpy := *t
	cpy.Amount = t.Amount.Clone()
	return &cpy
}

func (t *Transfer) String() string {
	return fmt.Sprintf(
		"party(%s) asset(%s) event(%s) amount(%s) type(%s)",
		t.Party,
		t.Asset,
		t.Event,
		t.Amount.String(),
		t.Type.String(),
	)
}

// FeeCategory says which lifecycle step a fee charge belongs to.
type FeeCategory int8

const (
	FeeCategoryUnspecified FeeCategory = iota
	// FeeOnPlacement is charged when an order is accepted onto the book.
	FeeOnPlacement
	// FeeOnTrade is charged on each match, split between the two sides.
	FeeOnTrade
)

func (c FeeCategory) String() string {
	switch c {
	case FeeOnPlacement:
		return "placement"
	case FeeOnTrade:
		return "trade"
	default:
		return "unspecified"
	}
}
