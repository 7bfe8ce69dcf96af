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
	"code.ceresmarkets.io/ceres/libs/config/encoding"
	"code.ceresmarkets.io/ceres/logging"
)

const namedLogger = "fee"

// Config represents the configuration of the fee package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// PlacementFeeFactor and TradeFeeFactor are decimal factors applied
	// to the order/trade size, e.g. "0.001".
	PlacementFeeFactor string `long:"placement-fee-factor"`
	TradeFeeFactor     string `long:"trade-fee-factor"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:              encoding.LogLevel{Level: logging.InfoLevel},
		PlacementFeeFactor: "0",
		TradeFeeFactor:     "0",
	}
}
