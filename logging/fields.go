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

package logging

import (
	"fmt"

	"code.ceresmarkets.io/ceres/core/types"
	"code.ceresmarkets.io/ceres/libs/num"

	"go.uber.org/zap"
)

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and slice of values.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// Uint32 constructs a field with the given key and value.
func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Bool constructs a field with the given key and value.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Error constructs a field carrying an error.
func Error(err error) zap.Field {
	return zap.Error(err)
}

// BigUint constructs a field with the given key and a num.Uint value,
// rendered as a decimal string. A nil value renders as "nil".
func BigUint(key string, val *num.Uint) zap.Field {
	if val == nil {
		return zap.String(key, "nil")
	}
	return zap.String(key, val.String())
}

// EventID constructs a field holding an event identifier.
func EventID(id string) zap.Field {
	return zap.String("event-id", id)
}

// PartyID constructs a field holding a party identifier.
func PartyID(id string) zap.Field {
	return zap.String("party-id", id)
}

// AssetID constructs a field holding an asset identifier.
func AssetID(id string) zap.Field {
	return zap.String("asset-id", id)
}

// OrderID constructs a field holding an order identifier.
func OrderID(id types.OrderID) zap.Field {
	return zap.Uint64("order-id", uint64(id))
}

// Order constructs a single string field with the full order details.
func Order(o types.Order) zap.Field {
	return zap.String("order", o.String())
}

// Trade constructs a single string field with the full trade details.
func Trade(t types.Trade) zap.Field {
	return zap.String("trade", t.String())
}

// Reflect constructs a best-effort field for arbitrary values, only meant
// for debug output.
func Reflect(key string, val interface{}) zap.Field {
	return zap.String(key, fmt.Sprintf("%+v", val))
}
