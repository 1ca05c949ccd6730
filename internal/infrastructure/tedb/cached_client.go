package tedb

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TierPolicy tamaño y vigencia de un nivel de caché.
type TierPolicy struct {
	Size int
	TTL  time.Duration
}

// CachePolicy política de los tres niveles de caché del cliente.
type CachePolicy struct {
	Configurations TierPolicy
	Search         TierPolicy
	Rate           TierPolicy
}

// DefaultCachePolicy valores de producción: el mapa de países cambia muy
// poco, las búsquedas y los tipos se refrescan a diario.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		Configurations: TierPolicy{Size: 10, TTL: 5 * 24 * time.Hour},
		Search:         TierPolicy{Size: 100, TTL: 24 * time.Hour},
		Rate:           TierPolicy{Size: 100, TTL: 24 * time.Hour},
	}
}

// CachedClient decora un API con tres cachés LRU con expiración, una por
// llamada. No colapsa peticiones concurrentes de la misma clave: dos
// llamadas simultáneas no cacheadas golpean ambas el servicio.
type CachedClient struct {
	inner API

	configs *expirable.LRU[string, *Configurations]
	search  *expirable.LRU[string, *SearchResult]
	rates   *expirable.LRU[string, *TaxRate]
}

// NewCachedClient decora inner con la política dada.
func NewCachedClient(inner API, policy CachePolicy) *CachedClient {
	return &CachedClient{
		inner:   inner,
		configs: expirable.NewLRU[string, *Configurations](policy.Configurations.Size, nil, policy.Configurations.TTL),
		search:  expirable.NewLRU[string, *SearchResult](policy.Search.Size, nil, policy.Search.TTL),
		rates:   expirable.NewLRU[string, *TaxRate](policy.Rate.Size, nil, policy.Rate.TTL),
	}
}

// GetConfigurations versión cacheada; una sola entrada.
func (c *CachedClient) GetConfigurations(ctx context.Context) (*Configurations, error) {
	const key = "unique"
	if v, ok := c.configs.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.GetConfigurations(ctx)
	if err != nil {
		return nil, err
	}
	c.configs.Add(key, v)
	return v, nil
}

// SearchTaxes versión cacheada; la clave colapsa la fecha al día natural.
func (c *CachedClient) SearchTaxes(ctx context.Context, tedbCountryID, taxType string, date time.Time) (*SearchResult, error) {
	key := fmt.Sprintf("%s%s%d%d", tedbCountryID, taxType, date.Year(), date.YearDay())
	if v, ok := c.search.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.SearchTaxes(ctx, tedbCountryID, taxType, date)
	if err != nil {
		return nil, err
	}
	c.search.Add(key, v)
	return v, nil
}

// GetTaxRate versión cacheada por impuesto y versión.
func (c *CachedClient) GetTaxRate(ctx context.Context, taxID, versionDate string) (*TaxRate, error) {
	key := taxID + versionDate
	if v, ok := c.rates.Get(key); ok {
		return v, nil
	}
	v, err := c.inner.GetTaxRate(ctx, taxID, versionDate)
	if err != nil {
		return nil, err
	}
	c.rates.Add(key, v)
	return v, nil
}
