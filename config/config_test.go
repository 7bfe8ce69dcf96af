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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"code.ceresmarkets.io/ceres/config"
	"code.ceresmarkets.io/ceres/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	dir := t.TempDir()

	cfg := config.NewDefaultConfig()
	cfg.Execution.Fee.TradeFeeFactor = "0.001"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9102
	require.NoError(t, config.Write(dir, cfg))

	loaded, err := config.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.001", loaded.Execution.Fee.TradeFeeFactor)
	assert.True(t, loaded.Metrics.Enabled)
	assert.Equal(t, 9102, loaded.Metrics.Port)
	// untouched values keep their defaults
	assert.Equal(t, "0", loaded.Execution.Fee.PlacementFeeFactor)
	assert.Equal(t, "dev", loaded.Logging.Environment)
}

func TestReadPartialFile(t *testing.T) {
	dir := t.TempDir()
	partial := `
[Logging]
  Environment = "prod"

[Execution]
  Level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(partial), 0o644))

	loaded, err := config.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.Logging.Environment)
	assert.Equal(t, logging.DebugLevel, loaded.Execution.Level.Get())
	// the rest comes from the defaults
	assert.Equal(t, 2112, loaded.Metrics.Port)
}

func TestReadMissingFile(t *testing.T) {
	_, err := config.Read(t.TempDir())
	assert.Error(t, err)
}
