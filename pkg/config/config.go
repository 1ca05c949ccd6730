// Package config agrupa la configuración del motor de facturación
// (lectura vía Viper desde variables de entorno y opcionalmente archivo .env).
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación.
type Config struct {
	App Application
	Tax TaxLookup
	Tmf TmfEndpoints
}

// Application configuración general.
type Application struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// TaxLookup configuración del servicio externo de tipos de IVA (TEDB)
// y de sus tres niveles de caché (tamaño máximo + TTL por nivel).
type TaxLookup struct {
	BaseURL     string
	HTTPTimeout time.Duration

	ConfigCacheSize int
	ConfigCacheTTL  time.Duration
	SearchCacheSize int
	SearchCacheTTL  time.Duration
	RateCacheSize   int
	RateCacheTTL    time.Duration
}

// TmfEndpoints URLs base de las APIs TMF de las que el motor lee entidades.
// El binding HTTP concreto vive fuera del core; aquí solo se transporta.
type TmfEndpoints struct {
	PartyBaseURL     string
	BillingBaseURL   string
	InventoryBaseURL string
	CatalogBaseURL   string
	AccountBaseURL   string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, TAX_BASE_URL, TAX_RATE_CACHE_TTL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "invoicing-engine")
	v.SetDefault("APP_LOG_LEVEL", "info")

	v.SetDefault("TAX_BASE_URL", "https://ec.europa.eu/taxation_customs/tedb/rest-api")
	v.SetDefault("TAX_HTTP_TIMEOUT", "30s")
	v.SetDefault("TAX_CONFIG_CACHE_SIZE", 10)
	v.SetDefault("TAX_CONFIG_CACHE_TTL", "120h") // 5 días
	v.SetDefault("TAX_SEARCH_CACHE_SIZE", 100)
	v.SetDefault("TAX_SEARCH_CACHE_TTL", "24h")
	v.SetDefault("TAX_RATE_CACHE_SIZE", 100)
	v.SetDefault("TAX_RATE_CACHE_TTL", "24h")

	v.SetDefault("TMF_PARTY_BASE_URL", "http://localhost:8632")
	v.SetDefault("TMF_BILLING_BASE_URL", "http://localhost:8678")
	v.SetDefault("TMF_INVENTORY_BASE_URL", "http://localhost:8637")
	v.SetDefault("TMF_CATALOG_BASE_URL", "http://localhost:8620")
	v.SetDefault("TMF_ACCOUNT_BASE_URL", "http://localhost:8666")

	cfg := &Config{
		App: Application{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("APP_LOG_LEVEL"),
		},
		Tax: TaxLookup{
			BaseURL:         v.GetString("TAX_BASE_URL"),
			HTTPTimeout:     v.GetDuration("TAX_HTTP_TIMEOUT"),
			ConfigCacheSize: v.GetInt("TAX_CONFIG_CACHE_SIZE"),
			ConfigCacheTTL:  v.GetDuration("TAX_CONFIG_CACHE_TTL"),
			SearchCacheSize: v.GetInt("TAX_SEARCH_CACHE_SIZE"),
			SearchCacheTTL:  v.GetDuration("TAX_SEARCH_CACHE_TTL"),
			RateCacheSize:   v.GetInt("TAX_RATE_CACHE_SIZE"),
			RateCacheTTL:    v.GetDuration("TAX_RATE_CACHE_TTL"),
		},
		Tmf: TmfEndpoints{
			PartyBaseURL:     v.GetString("TMF_PARTY_BASE_URL"),
			BillingBaseURL:   v.GetString("TMF_BILLING_BASE_URL"),
			InventoryBaseURL: v.GetString("TMF_INVENTORY_BASE_URL"),
			CatalogBaseURL:   v.GetString("TMF_CATALOG_BASE_URL"),
			AccountBaseURL:   v.GetString("TMF_ACCOUNT_BASE_URL"),
		},
	}
	return cfg, nil
}
