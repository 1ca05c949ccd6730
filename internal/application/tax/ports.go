// Package tax calcula el IVA aplicable a una transacción: resuelve los
// países de las partes, decide si la operación es transfronteriza y aplica
// el tipo estándar del país del vendedor sobre importes y pedidos.
package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/internal/countries"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

// OrganizationReader lectura de organizaciones TMF632.
type OrganizationReader interface {
	GetOrganization(ctx context.Context, id string) (*tmf.Organization, error)
}

// ProductReader lectura de productos TMF637.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*tmf.Product, error)
}

// RateProvider fuente del tipo estándar de IVA de un país a una fecha, como
// fracción. La implementación de producción encadena las llamadas TEDB.
type RateProvider interface {
	VATRateInCountryAtDate(ctx context.Context, countryCode string, date time.Time) (decimal.Decimal, error)
}

// CountryGuesser inferencia de país cuando la organización no lo declara.
type CountryGuesser interface {
	GuessCountry(org tmf.Organization) []countries.GuessResult
}
