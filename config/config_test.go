package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apotek.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "data_original/pembelian.tsv", cfg.Input.Ledger)
	assert.Equal(t, "data_cleaned/pembelian_cleaned.csv", cfg.Output.Transactions)
	assert.Equal(t, ';', cfg.Comma())
	assert.Equal(t, "zscore", cfg.Outlier.Method)
	assert.Equal(t, "qty_out", cfg.Outlier.Column)
	assert.Equal(t, 3.0, cfg.Outlier.Param())
	assert.Equal(t, 60, cfg.Ledger.SaleColumnOffset)
	assert.Equal(t, 0.5, cfg.Classify.PriceBandLow)
	assert.Equal(t, 1.5, cfg.Classify.PriceBandHigh)
	assert.Equal(t, 0, cfg.Tree.MaxDepth)
	assert.Equal(t, 2, cfg.Tree.MinSamplesSplit)
	assert.Empty(t, cfg.Export.SQLite)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
outlier:
  method: iqr
  iqr_factor: 2
  threshold: 4
tree:
  max_depth: 5
delimiter: ","
`)
	t.Setenv("APOTEK_TREE_MAX_DEPTH", "3")
	t.Setenv("APOTEK_OUTLIER_IQR_FACTOR", "2.5")
	t.Setenv("APOTEK_LOG_LEVEL", "debug")

	cfg, err := Load(path, map[string]any{"outlier.iqr_factor": 3.0})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "iqr", cfg.Outlier.Method, "file overrides defaults")
	assert.Equal(t, 4.0, cfg.Outlier.Threshold, "file overrides defaults")
	assert.Equal(t, ',', cfg.Comma(), "file overrides defaults")
	assert.Equal(t, 3, cfg.Tree.MaxDepth, "env overrides file")
	assert.Equal(t, "debug", cfg.LogLevel, "env overrides defaults")
	assert.Equal(t, 3.0, cfg.Outlier.IQRFactor, "flags override env")
	assert.Equal(t, 3.0, cfg.Outlier.Param())
	assert.Equal(t, 1.5, cfg.Classify.PriceBandHigh, "untouched default")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		errSubstr string
	}{
		{"method", map[string]any{"outlier.method": "mad"}, "Config.Outlier.Method"},
		{"column", map[string]any{"outlier.column": "price"}, "Config.Outlier.Column"},
		{"delimiter", map[string]any{"delimiter": ";;"}, "Config.Delimiter"},
		{"band", map[string]any{"classify.price_band_high": 0.4}, "Config.Classify.PriceBandHigh"},
		{"split", map[string]any{"tree.min_samples_split": 1}, "Config.Tree.MinSamplesSplit"},
		{"xlsx", map[string]any{"export.xlsx": "out.csv"}, "Config.Export.XLSX"},
		{"level", map[string]any{"log_level": "loud"}, "Config.LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APOTEK_LOG_LEVEL":                 "log_level",
		"APOTEK_DELIMITER":                 "delimiter",
		"APOTEK_OUTLIER_IQR_FACTOR":        "outlier.iqr_factor",
		"APOTEK_LEDGER_SALE_COLUMN_OFFSET": "ledger.sale_column_offset",
		"APOTEK_OUTPUT_HANDLED":            "output.handled",
		"APOTEK_EXPORT_SQLITE":             "export.sqlite",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}
