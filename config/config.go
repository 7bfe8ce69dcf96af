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

package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.ceresmarkets.io/ceres/core/execution"
	"code.ceresmarkets.io/ceres/logging"
	"code.ceresmarkets.io/ceres/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configFileName = "config.toml"

// Config ties together all other application configuration types.
type Config struct {
	Execution execution.Config `group:"Execution" namespace:"execution"`
	Metrics   metrics.Config   `group:"Metrics"   namespace:"metrics"`
	Logging   logging.Config   `group:"Logging"   namespace:"logging"`
}

// NewDefaultConfig returns a set of defaults for all packages, as specified
// at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Execution: execution.NewDefaultConfig(),
		Metrics:   metrics.NewDefaultConfig(),
		Logging:   logging.NewDefaultConfig(),
	}
}

// Read loads the configuration file found under rootPath on top of the
// defaults, so a partial file is fine.
func Read(rootPath string) (*Config, error) {
	buf, err := os.ReadFile(filepath.Join(rootPath, configFileName))
	if err != nil {
		return nil, errors.Wrap(err, "unable to read configuration file")
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode configuration file")
	}
	return &cfg, nil
}

// Write serialises the given configuration into rootPath, overwriting any
// existing file.
func Write(rootPath string, cfg Config) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(rootPath, configFileName), buf.Bytes(), 0o644)
}
