package config

const EnvPrefix = "tableserve"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names, shared with tests and deploy tooling.
const (
	EnvAppEnv       = "TABLESERVE_APP_ENV"
	EnvPort         = "TABLESERVE_APP_PORT"
	EnvLogLevel     = "TABLESERVE_LOG_LEVEL"
	EnvLogWarnStack = "TABLESERVE_LOG_WARN_STACK"
	EnvDataDir      = "TABLESERVE_DATA_DIR"
	EnvProductsFile = "TABLESERVE_DATA_PRODUCTS_FILE"
	EnvAddonsFile   = "TABLESERVE_DATA_ADDONS_FILE"
	EnvLedgerFile   = "TABLESERVE_DATA_LEDGER_FILE"
	EnvTaxRate      = "TABLESERVE_SALES_TAX_RATE"
)
