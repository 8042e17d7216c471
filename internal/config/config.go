package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/KaramelBytes/fitcorr/internal/source"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultDataFile is the measurement export analyzed when nothing else is configured.
const DefaultDataFile = "fitness data.xlsx - KS_NFA_FTNESS_MESURE_ITEM_MESUR.csv"

// Global configuration structure.
type Global struct {
	DataFile         string `mapstructure:"data_file" yaml:"data_file" validate:"required"`
	DataDir          string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	// Delimiter is empty (or "auto") to pick by extension: tab for .tsv, else comma.
	Delimiter        string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	DecimalSeparator string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"decimal"`
	// XLSX sheet selection
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index" validate:"gte=1"`

	// Dashboard server
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"required,hostname_port"`
	CacheMaxCost int64  `mapstructure:"cache_max_cost" yaml:"cache_max_cost" validate:"gt=0"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"data_file", "data_dir", "delimiter", "decimal_separator", "sheet_name", "sheet_index",
	"listen_addr", "cache_max_cost", "log_level", "log_format",
}

// DataPath resolves the configured data file against DataDir.
func (c *Global) DataPath() string {
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile
	}
	return filepath.Join(c.DataDir, c.DataFile)
}

// DatasetOptions converts the decoding settings for the loader.
func (c *Global) DatasetOptions() dataset.Options {
	return dataset.Options{
		Source: source.Options{
			Delimiter:  delimiterRune(c.Delimiter),
			SheetName:  c.SheetName,
			SheetIndex: c.SheetIndex,
		},
		DecimalSeparator: decimalRune(c.DecimalSeparator),
	}
}

func delimiterRune(s string) rune {
	switch strings.ToLower(s) {
	case ";":
		return ';'
	case "tab", "\t":
		return '\t'
	case "|":
		return '|'
	case ",":
		return ','
	default:
		return 0
	}
}

func decimalRune(s string) rune {
	switch strings.ToLower(s) {
	case ",", "comma":
		return ','
	default:
		return '.'
	}
}

// Validate checks field constraints.
func (c *Global) Validate() error {
	v := validator.New()
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || strings.EqualFold(s, "auto") || delimiterRune(s) != 0
	})
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", ".", "dot", ",", "comma":
			return true
		}
		return false
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Set assigns a value by key. c is left untouched when the result is invalid.
func (c *Global) Set(key, val string) error {
	next := *c
	if err := next.assign(key, val); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Global) assign(key, val string) error {
	switch key {
	case "data_file":
		c.DataFile = val
	case "data_dir":
		c.DataDir = val
	case "delimiter":
		c.Delimiter = val
	case "decimal_separator":
		c.DecimalSeparator = val
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for sheet_index: %w", err)
		}
		c.SheetIndex = i
	case "listen_addr":
		c.ListenAddr = val
	case "cache_max_cost":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for cache_max_cost: %w", err)
		}
		c.CacheMaxCost = i
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get returns a value by key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_file":
		return c.DataFile, nil
	case "data_dir":
		return c.DataDir, nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "sheet_name":
		return c.SheetName, nil
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "cache_max_cost":
		return strconv.FormatInt(c.CacheMaxCost, 10), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fitcorr"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fitcorr/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FITCORR")
	v.AutomaticEnv()

	v.SetDefault("data_file", DefaultDataFile)
	v.SetDefault("data_dir", ".")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("cache_max_cost", 64<<20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// A missing explicit file is created by the first Save.
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
