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
	"code.ceresmarkets.io/ceres/core/fee"
	"code.ceresmarkets.io/ceres/core/matching"
	"code.ceresmarkets.io/ceres/core/positions"
	"code.ceresmarkets.io/ceres/core/settlement"
	"code.ceresmarkets.io/ceres/libs/config/encoding"
	"code.ceresmarkets.io/ceres/logging"
)

const namedLogger = "execution"

// Config is the configuration of the execution package.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	Matching   matching.Config   `group:"Matching"   namespace:"matching"`
	Positions  positions.Config  `group:"Positions"  namespace:"positions"`
	Collateral collateral.Config `group:"Collateral" namespace:"collateral"`
	Settlement settlement.Config `group:"Settlement" namespace:"settlement"`
	Fee        fee.Config        `group:"Fee"        namespace:"fee"`
}

// NewDefaultConfig creates an instance of the package specific configuration,
// given a pointer to a logger instance to be used for logging within the
// package.
func NewDefaultConfig() Config {
	return Config{
		Level:      encoding.LogLevel{Level: logging.InfoLevel},
		Matching:   matching.NewDefaultConfig(),
		Positions:  positions.NewDefaultConfig(),
		Collateral: collateral.NewDefaultConfig(),
		Settlement: settlement.NewDefaultConfig(),
		Fee:        fee.NewDefaultConfig(),
	}
}
