package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StorageDriver  string
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string
	BoltPath       string
	ChartSeedPath  string

	AuthEnabled bool
	JWTSecret   string
	JWTIssuer   string

	RateLimit       string
	FrontendBaseURL string

	Ledger LedgerPolicy
}

// LedgerPolicy carries the accounting choices that are inputs rather than constants:
// tax rates, the over-payment rule and which accounts and journals the sub-ledgers post to.
type LedgerPolicy struct {
	TaxRates         map[string]decimal.Decimal
	AllowOverpayment bool

	ReceivableAccountCode    string
	PayableAccountCode       string
	CashAccountCode          string
	TaxPayableAccountCode    string
	TaxReceivableAccountCode string
	InventoryAccountCode     string
	COGSAccountCode          string
	PriceVarianceAccountCode string

	SalesJournal     string
	PurchaseJournal  string
	CashJournal      string
	InventoryJournal string
}

// DefaultLedgerPolicy matches the seeded chart of accounts.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{
		TaxRates: map[string]decimal.Decimal{
			"GST10": decimal.RequireFromString("0.10"),
			"GST5":  decimal.RequireFromString("0.05"),
		},
		ReceivableAccountCode:    "1100",
		PayableAccountCode:       "2000",
		CashAccountCode:          "1000",
		TaxPayableAccountCode:    "2200",
		TaxReceivableAccountCode: "1300",
		InventoryAccountCode:     "1200",
		COGSAccountCode:          "5000",
		PriceVarianceAccountCode: "5900",
		SalesJournal:             "SJ",
		PurchaseJournal:          "PJ",
		CashJournal:              "CJ",
		InventoryJournal:         "GJ",
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	def := DefaultLedgerPolicy()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORAGE_DRIVER", StorageMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("BOLT_PATH", "ledger.db")
	viper.SetDefault("CHART_SEED_PATH", "config/chart_of_accounts.yaml")
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "ledger-engine")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("TAX_RATES", "GST10=0.10,GST5=0.05")
	viper.SetDefault("ALLOW_OVERPAYMENT", false)
	viper.SetDefault("AR_ACCOUNT_CODE", def.ReceivableAccountCode)
	viper.SetDefault("AP_ACCOUNT_CODE", def.PayableAccountCode)
	viper.SetDefault("CASH_ACCOUNT_CODE", def.CashAccountCode)
	viper.SetDefault("TAX_PAYABLE_ACCOUNT_CODE", def.TaxPayableAccountCode)
	viper.SetDefault("TAX_RECEIVABLE_ACCOUNT_CODE", def.TaxReceivableAccountCode)
	viper.SetDefault("INVENTORY_ACCOUNT_CODE", def.InventoryAccountCode)
	viper.SetDefault("COGS_ACCOUNT_CODE", def.COGSAccountCode)
	viper.SetDefault("PPV_ACCOUNT_CODE", def.PriceVarianceAccountCode)
	viper.SetDefault("SALES_JOURNAL", def.SalesJournal)
	viper.SetDefault("PURCHASE_JOURNAL", def.PurchaseJournal)
	viper.SetDefault("CASH_JOURNAL", def.CashJournal)
	viper.SetDefault("INVENTORY_JOURNAL", def.InventoryJournal)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		StorageDriver:   strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		BoltPath:        viper.GetString("BOLT_PATH"),
		ChartSeedPath:   viper.GetString("CHART_SEED_PATH"),
		AuthEnabled:     viper.GetBool("AUTH_ENABLED"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		RateLimit:       viper.GetString("RATE_LIMIT"),
		FrontendBaseURL: viper.GetString("FRONTEND_BASE_URL"),
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageBolt:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %q", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if !cfg.AuthEnabled {
		log.Println("Warning: AUTH_ENABLED is false. Writes will be attributed to the system actor.")
	}

	taxRates, err := ParseTaxRates(viper.GetString("TAX_RATES"))
	if err != nil {
		return nil, err
	}

	cfg.Ledger = LedgerPolicy{
		TaxRates:                 taxRates,
		AllowOverpayment:         viper.GetBool("ALLOW_OVERPAYMENT"),
		ReceivableAccountCode:    viper.GetString("AR_ACCOUNT_CODE"),
		PayableAccountCode:       viper.GetString("AP_ACCOUNT_CODE"),
		CashAccountCode:          viper.GetString("CASH_ACCOUNT_CODE"),
		TaxPayableAccountCode:    viper.GetString("TAX_PAYABLE_ACCOUNT_CODE"),
		TaxReceivableAccountCode: viper.GetString("TAX_RECEIVABLE_ACCOUNT_CODE"),
		InventoryAccountCode:     viper.GetString("INVENTORY_ACCOUNT_CODE"),
		COGSAccountCode:          viper.GetString("COGS_ACCOUNT_CODE"),
		PriceVarianceAccountCode: viper.GetString("PPV_ACCOUNT_CODE"),
		SalesJournal:             viper.GetString("SALES_JOURNAL"),
		PurchaseJournal:          viper.GetString("PURCHASE_JOURNAL"),
		CashJournal:              viper.GetString("CASH_JOURNAL"),
		InventoryJournal:         viper.GetString("INVENTORY_JOURNAL"),
	}

	return cfg, nil
}

// ParseTaxRates reads "CODE=rate" pairs separated by commas, e.g. "GST10=0.10,GST5=0.05".
// Rates are fractions between 0 and 1.
func ParseTaxRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid TAX_RATES entry %q: want CODE=rate", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid tax rate for %s: %w", code, err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("tax rate for %s must be between 0 and 1", code)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}
