package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App   AppConfig
	Data  DataConfig
	Sales SalesConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Data.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sales.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TABLESERVE_APP_ENV" required:"true"`
	Port         string `envconfig:"TABLESERVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABLESERVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABLESERVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DataConfig locates the flat-file backing stores. File entries are joined
// onto Dir unless they are absolute paths.
type DataConfig struct {
	Dir          string `envconfig:"TABLESERVE_DATA_DIR" default:"DatabaseFiles"`
	ProductsFile string `envconfig:"TABLESERVE_DATA_PRODUCTS_FILE" default:"products.txt"`
	AddonsFile   string `envconfig:"TABLESERVE_DATA_ADDONS_FILE" default:"addons.txt"`
	LedgerFile   string `envconfig:"TABLESERVE_DATA_LEDGER_FILE" default:"orders.txt"`
}

func (d DataConfig) validate() error {
	if strings.TrimSpace(d.Dir) == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	for name, file := range map[string]string{
		"products file": d.ProductsFile,
		"addons file":   d.AddonsFile,
		"ledger file":   d.LedgerFile,
	} {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

func (d DataConfig) ProductsPath() string {
	return d.resolve(d.ProductsFile)
}

func (d DataConfig) AddonsPath() string {
	return d.resolve(d.AddonsFile)
}

func (d DataConfig) LedgerPath() string {
	return d.resolve(d.LedgerFile)
}

func (d DataConfig) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(d.Dir, file)
}

// SalesConfig carries order-pricing knobs. TaxRate is a fraction of the
// subtotal, e.g. "0.07" for a 7% tax.
type SalesConfig struct {
	TaxRate string `envconfig:"TABLESERVE_SALES_TAX_RATE" default:"0.07"`

	taxRate decimal.Decimal
}

func (s *SalesConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.TaxRate))
	if err != nil {
		return fmt.Errorf("parsing tax rate %q: %w", s.TaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate %s out of range [0, 1)", rate)
	}
	s.taxRate = rate
	return nil
}

// TaxRateFraction returns the parsed tax rate. Only meaningful on a config
// built through Load.
func (s SalesConfig) TaxRateFraction() decimal.Decimal {
	return s.taxRate
}
