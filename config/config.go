// Package config loads the apotek configuration.
//
// Values are layered, each layer overriding the previous one:
//
//   - built-in defaults,
//   - the apotek.yaml file, when present,
//   - APOTEK_ environment variables (APOTEK_OUTLIER_METHOD sets outlier.method),
//   - command line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "apotek.yaml"

// EnvPrefix is the prefix of the environment variables read.
const EnvPrefix = "APOTEK_"

// Input holds the raw exports of the pharmacy system.
type Input struct {
	Ledger string `koanf:"ledger" validate:"required"`
	Stock  string `koanf:"stock" validate:"required"`
}

// Output holds the paths of the files a run produces.
type Output struct {
	Transactions string `koanf:"transactions" validate:"required"` // cleaned ledger
	Stock        string `koanf:"stock" validate:"required"`        // cleaned stock
	Handled      string `koanf:"handled" validate:"required"`      // transactions without errors
	Predictions  string `koanf:"predictions" validate:"required"`
	Importances  string `koanf:"importances" validate:"required"`
	Summary      string `koanf:"summary" validate:"required"`
	Report       string `koanf:"report"`
}

// Outlier configures the outlier detector.
type Outlier struct {
	Method    string  `koanf:"method" validate:"oneof=zscore iqr"`
	Column    string  `koanf:"column" validate:"oneof=qty_in value_in qty_out value_out"`
	Threshold float64 `koanf:"threshold" validate:"gt=0"`
	IQRFactor float64 `koanf:"iqr_factor" validate:"gt=0"`
}

// Param returns the detector parameter of the configured method.
func (o Outlier) Param() float64 {
	if o.Method == "iqr" {
		return o.IQRFactor
	}
	return o.Threshold
}

// Ledger configures the ledger parser.
type Ledger struct {
	SaleColumnOffset int `koanf:"sale_column_offset" validate:"gt=0"`
}

// Classify configures the outlier classifier.
type Classify struct {
	PriceBandLow  float64 `koanf:"price_band_low" validate:"gt=0"`
	PriceBandHigh float64 `koanf:"price_band_high" validate:"gtfield=PriceBandLow"`
}

// Tree configures the stock level decision tree.
type Tree struct {
	MaxDepth        int `koanf:"max_depth" validate:"gte=0"` // 0 is unlimited
	MinSamplesSplit int `koanf:"min_samples_split" validate:"gte=2"`
}

// Export configures the optional exports, disabled when empty.
type Export struct {
	SQLite string `koanf:"sqlite"`
	XLSX   string `koanf:"xlsx" validate:"omitempty,endswith=.xlsx"`
}

// Config is the complete apotek configuration.
type Config struct {
	Input     Input    `koanf:"input"`
	Output    Output   `koanf:"output"`
	Delimiter string   `koanf:"delimiter" validate:"len=1"`
	Outlier   Outlier  `koanf:"outlier"`
	Ledger    Ledger   `koanf:"ledger"`
	Classify  Classify `koanf:"classify"`
	Tree      Tree     `koanf:"tree"`
	Export    Export   `koanf:"export"`
	LogLevel  string   `koanf:"log_level" validate:"oneof=trace debug info warn error"`

	// File is the configuration file that was read, empty if none.
	File string `koanf:"-"`
}

// Comma returns the delimiter as a rune.
func (c *Config) Comma() rune {
	return []rune(c.Delimiter)[0]
}

// Defaults returns the built-in configuration values, by key.
func Defaults() map[string]any {
	return map[string]any{
		"input.ledger":              "data_original/pembelian.tsv",
		"input.stock":               "data_original/stok.tsv",
		"output.transactions":       "data_cleaned/pembelian_cleaned.csv",
		"output.stock":              "data_cleaned/stok_cleaned.csv",
		"output.handled":            "data_result_handler/pembelian_final.csv",
		"output.predictions":        "data_model/tree_predictions.csv",
		"output.importances":        "data_model/tree_feature_importances.csv",
		"output.summary":            "data_model/summary.json",
		"output.report":             "data_model/report.md",
		"delimiter":                 ";",
		"outlier.method":            "zscore",
		"outlier.column":            "qty_out",
		"outlier.threshold":         3.0,
		"outlier.iqr_factor":        1.5,
		"ledger.sale_column_offset": 60,
		"classify.price_band_low":   0.5,
		"classify.price_band_high":  1.5,
		"tree.max_depth":            0,
		"tree.min_samples_split":    2,
		"export.sqlite":             "",
		"export.xlsx":               "",
		"log_level":                 "info",
	}
}

// Load reads the configuration.
//
// cfgFile is the configuration file to read, DefaultFile is read when empty
// and it exists. overrides are the values of explicitly set flags, by key;
// they take precedence over everything else.
func Load(cfgFile string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// APOTEK_OUTLIER_IQR_FACTOR -> outlier.iqr_factor
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// sections are the top level keys holding nested keys.
var sections = []string{"input", "output", "outlier", "ledger", "classify", "tree", "export"}

// envKey maps an environment variable name to a configuration key. The first
// underscore after a section name separates the section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Validate checks the configuration values.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		errs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("invalid configuration: %s: failed %q check on %v", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return errors.Join(errs...)
	}
	return nil
}
