package tax_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dome-marketplace/invoicing-engine/internal/application/tax"
	"github.com/dome-marketplace/invoicing-engine/internal/countries"
	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

// ----------------------------------------------------------------------------
// Dobles de prueba
// ----------------------------------------------------------------------------

type tiposFalsos struct {
	tipo     decimal.Decimal
	llamadas int
}

func (f *tiposFalsos) VATRateInCountryAtDate(_ context.Context, _ string, _ time.Time) (decimal.Decimal, error) {
	f.llamadas++
	return f.tipo, nil
}

type orgsFalsas struct {
	porID map[string]*tmf.Organization
}

func (f *orgsFalsas) GetOrganization(_ context.Context, id string) (*tmf.Organization, error) {
	org, ok := f.porID[id]
	if !ok {
		return nil, fmt.Errorf("organización %s no existe", id)
	}
	return org, nil
}

type productosFalsos struct {
	porID    map[string]*tmf.Product
	llamadas int
}

func (f *productosFalsos) GetProduct(_ context.Context, id string) (*tmf.Product, error) {
	f.llamadas++
	p, ok := f.porID[id]
	if !ok {
		return nil, fmt.Errorf("producto %s no existe", id)
	}
	return p, nil
}

func orgConPais(id, country string) *tmf.Organization {
	return &tmf.Organization{
		ID: id,
		PartyCharacteristic: []tmf.Characteristic{
			{Name: "country", Value: country},
		},
	}
}

func gestorDe(t *testing.T, tipo string, orgs map[string]*tmf.Organization) (*tax.RateManager, *tiposFalsos) {
	t.Helper()
	rates := &tiposFalsos{tipo: decimal.RequireFromString(tipo)}
	return tax.NewRateManager(rates, &orgsFalsas{porID: orgs}, nil, nil), rates
}

// ----------------------------------------------------------------------------
// RateManager
// ----------------------------------------------------------------------------

func TestVATRateForCountries_Domestico(t *testing.T) {
	m, rates := gestorDe(t, "0.22", nil)

	vat, err := m.VATRateForCountries(context.Background(), "IT", "it", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "0.22", vat.String())
	assert.Equal(t, 1, rates.llamadas)
}

func TestVATRateForCountries_Transfronterizo(t *testing.T) {
	m, rates := gestorDe(t, "0.22", nil)

	// Países distintos: tipo cero sin consultar la fuente.
	vat, err := m.VATRateForCountries(context.Background(), "IT", "DE", time.Now())
	require.NoError(t, err)
	assert.True(t, vat.IsZero())
	assert.Zero(t, rates.llamadas)
}

func TestVATRateForCountries_ParametrosInvalidos(t *testing.T) {
	m, _ := gestorDe(t, "0.22", nil)
	ctx := context.Background()

	_, err := m.VATRateForCountries(ctx, "", "IT", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.VATRateForCountries(ctx, "IT", "  ", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.VATRateForCountries(ctx, "IT", "IT", time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCountryCodeFor_CaracteristicaCountry(t *testing.T) {
	m, _ := gestorDe(t, "0.22", map[string]*tmf.Organization{
		"org-1": orgConPais("org-1", "IT"),
	})

	code, err := m.CountryCodeFor(context.Background(), tmf.RelatedParty{ID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, "IT", code)
}

func TestCountryCodeFor_FalloDeServicio(t *testing.T) {
	m, _ := gestorDe(t, "0.22", nil)

	_, err := m.CountryCodeFor(context.Background(), tmf.RelatedParty{ID: "desconocida"})
	require.Error(t, err)

	var eerr *domain.ExternalServiceError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "organization.get", eerr.Op)
}

type adivinadorFijo struct{ code string }

func (a adivinadorFijo) GuessCountry(tmf.Organization) []countries.GuessResult {
	if a.code == "" {
		return nil
	}
	return []countries.GuessResult{{CountryCode: a.code, Score: 3}}
}

func TestCountryCodeFor_RecurreAlAdivinador(t *testing.T) {
	orgs := &orgsFalsas{porID: map[string]*tmf.Organization{
		"org-2": {ID: "org-2"},
	}}
	m := tax.NewRateManager(&tiposFalsos{}, orgs, adivinadorFijo{code: "NL"}, nil)

	code, err := m.CountryCodeFor(context.Background(), tmf.RelatedParty{ID: "org-2"})
	require.NoError(t, err)
	assert.Equal(t, "NL", code)
}

func TestCountryCodeFor_NombreDePais(t *testing.T) {
	m, _ := gestorDe(t, "0.22", map[string]*tmf.Organization{
		"org-3": orgConPais("org-3", "Italy"),
	})

	code, err := m.CountryCodeFor(context.Background(), tmf.RelatedParty{ID: "org-3"})
	require.NoError(t, err)
	assert.Equal(t, "IT", code)
}

func TestCountryCodeFor_CaracteristicaIrreconocible(t *testing.T) {
	orgs := &orgsFalsas{porID: map[string]*tmf.Organization{
		"org-4": orgConPais("org-4", "Atlántida"),
	}}
	m := tax.NewRateManager(&tiposFalsos{}, orgs, adivinadorFijo{code: "NL"}, nil)

	// Un valor que no es ni alfa-2 ni nombre conocido se ignora y decide el
	// adivinador.
	code, err := m.CountryCodeFor(context.Background(), tmf.RelatedParty{ID: "org-4"})
	require.NoError(t, err)
	assert.Equal(t, "NL", code)
}

// ----------------------------------------------------------------------------
// TaxService sobre cargos de facturación
// ----------------------------------------------------------------------------

func partesItalianas() []tmf.RelatedParty {
	return []tmf.RelatedParty{
		{ID: "vendedor", Role: "Seller"},
		{ID: "comprador", Role: "Customer"},
	}
}

func servicioItaliano(t *testing.T) *tax.TaxService {
	t.Helper()
	orgs := map[string]*tmf.Organization{
		"vendedor":  orgConPais("vendedor", "IT"),
		"comprador": orgConPais("comprador", "IT"),
	}
	m, _ := gestorDe(t, "0.22", orgs)
	products := &productosFalsos{porID: map[string]*tmf.Product{
		"prod-1": {ID: "prod-1", RelatedParty: partesItalianas()},
	}}
	return tax.NewTaxService(m, products, nil)
}

func TestApplyTaxesToBillingRates_Domestico(t *testing.T) {
	svc := servicioItaliano(t)

	fin := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rates := []tmf.AppliedCustomerBillingRate{{
		ID:                "rate-1",
		Product:           &tmf.ProductRef{ID: "prod-1"},
		PeriodCoverage:    &tmf.TimePeriod{EndDateTime: &fin},
		TaxExcludedAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("100.00")},
	}}

	out, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	require.NoError(t, err)
	require.Len(t, out, 1)

	r := out[0]
	require.Len(t, r.AppliedTax, 1)
	assert.Equal(t, "VAT", r.AppliedTax[0].TaxCategory)
	assert.Equal(t, "0.22", r.AppliedTax[0].TaxRate.String())
	assert.Equal(t, "22", r.AppliedTax[0].TaxAmount.Value.String())
	assert.Equal(t, "EUR", r.TaxIncludedAmount.Unit)
	assert.Equal(t, "122", r.TaxIncludedAmount.Value.String())
}

func TestApplyTaxesToBillingRates_ProductoPorCargo(t *testing.T) {
	orgs := map[string]*tmf.Organization{
		"vendedor":     orgConPais("vendedor", "IT"),
		"comprador":    orgConPais("comprador", "IT"),
		"comprador-de": orgConPais("comprador-de", "DE"),
	}
	m, _ := gestorDe(t, "0.22", orgs)
	products := &productosFalsos{porID: map[string]*tmf.Product{
		"prod-it": {ID: "prod-it", RelatedParty: partesItalianas()},
		"prod-de": {ID: "prod-de", RelatedParty: []tmf.RelatedParty{
			{ID: "vendedor", Role: "Seller"},
			{ID: "comprador-de", Role: "Customer"},
		}},
	}}
	svc := tax.NewTaxService(m, products, nil)

	fin := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rates := []tmf.AppliedCustomerBillingRate{
		{
			ID:                "rate-it",
			Product:           &tmf.ProductRef{ID: "prod-it"},
			PeriodCoverage:    &tmf.TimePeriod{EndDateTime: &fin},
			TaxExcludedAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("100.00")},
		},
		{
			ID:                "rate-de",
			Product:           &tmf.ProductRef{ID: "prod-de"},
			PeriodCoverage:    &tmf.TimePeriod{EndDateTime: &fin},
			TaxExcludedAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("100.00")},
		},
	}

	out, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, products.llamadas)

	// Cada cargo con las partes de su propio producto: el doméstico al 22%,
	// el transfronterizo a tipo cero.
	assert.Equal(t, "22", out[0].AppliedTax[0].TaxAmount.Value.String())
	assert.Equal(t, "122", out[0].TaxIncludedAmount.Value.String())
	assert.True(t, out[1].AppliedTax[0].TaxAmount.Value.IsZero())
	assert.Equal(t, "100", out[1].TaxIncludedAmount.Value.String())
}

func TestApplyTaxesToBillingRates_SinImporte(t *testing.T) {
	svc := servicioItaliano(t)

	fecha := time.Now()
	rates := []tmf.AppliedCustomerBillingRate{{
		ID:      "rate-1",
		Product: &tmf.ProductRef{ID: "prod-1"},
		Date:    &fecha,
	}}

	_, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyTaxesToBillingRates_SinProducto(t *testing.T) {
	svc := servicioItaliano(t)

	rates := []tmf.AppliedCustomerBillingRate{{ID: "rate-1"}}

	_, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	assert.ErrorIs(t, err, domain.ErrBadRelatedParty)
}

func TestApplyTaxesToBillingRates_ProductoInexistente(t *testing.T) {
	svc := servicioItaliano(t)

	rates := []tmf.AppliedCustomerBillingRate{{ID: "rate-1", Product: &tmf.ProductRef{ID: "no-existe"}}}

	_, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	require.Error(t, err)

	var eerr *domain.ExternalServiceError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "product.get", eerr.Op)
}

func TestApplyTaxesToBillingRates_SinVendedor(t *testing.T) {
	orgs := map[string]*tmf.Organization{
		"comprador": orgConPais("comprador", "IT"),
	}
	m, _ := gestorDe(t, "0.22", orgs)
	products := &productosFalsos{porID: map[string]*tmf.Product{
		"prod-1": {ID: "prod-1", RelatedParty: []tmf.RelatedParty{{ID: "comprador", Role: "Customer"}}},
	}}
	svc := tax.NewTaxService(m, products, nil)

	rates := []tmf.AppliedCustomerBillingRate{{ID: "rate-1", Product: &tmf.ProductRef{ID: "prod-1"}}}

	_, err := svc.ApplyTaxesToBillingRates(context.Background(), rates)
	assert.ErrorIs(t, err, domain.ErrBadRelatedParty)
}

func TestDateForVAT_CadenaDeRecursos(t *testing.T) {
	svc := servicioItaliano(t)

	inicio := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fin := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	cargo := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	// Fin de periodo primero.
	r := &tmf.AppliedCustomerBillingRate{
		PeriodCoverage: &tmf.TimePeriod{StartDateTime: &inicio, EndDateTime: &fin},
		Date:           &cargo,
	}
	assert.Equal(t, fin, svc.DateForVAT(r))

	// Sin fin: inicio del periodo.
	r.PeriodCoverage.EndDateTime = nil
	assert.Equal(t, inicio, svc.DateForVAT(r))

	// Sin periodo: la fecha del cargo.
	r.PeriodCoverage = nil
	assert.Equal(t, cargo, svc.DateForVAT(r))

	// Sin nada: el momento actual.
	r.Date = nil
	assert.WithinDuration(t, time.Now(), svc.DateForVAT(r), time.Minute)
}

// ----------------------------------------------------------------------------
// TaxService sobre pedidos
// ----------------------------------------------------------------------------

func TestApplyTaxesToOrder_PreciosYAlteraciones(t *testing.T) {
	svc := servicioItaliano(t)

	order := &tmf.ProductOrder{
		RelatedParty: partesItalianas(),
		OrderTotalPrice: []tmf.OrderPrice{{
			Price: &tmf.Price{DutyFreeAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("150.00")}},
		}},
		ProductOrderItem: []tmf.ProductOrderItem{{
			ItemPrice: []tmf.OrderPrice{{
				Price: &tmf.Price{DutyFreeAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("100.00")}},
				PriceAlteration: []tmf.PriceAlteration{{
					Price: &tmf.Price{DutyFreeAmount: &tmf.Money{Unit: "EUR", Value: decimal.RequireFromString("-10.00")}},
				}},
			}},
		}},
	}

	out, err := svc.ApplyTaxesToOrder(context.Background(), order)
	require.NoError(t, err)

	total := out.OrderTotalPrice[0].Price
	assert.InDelta(t, 0.22, total.TaxRate, 1e-9)
	assert.Equal(t, "183", total.TaxIncludedAmount.Value.String())

	item := out.ProductOrderItem[0].ItemPrice[0]
	assert.Equal(t, "122", item.Price.TaxIncludedAmount.Value.String())
	assert.Equal(t, "-12.2", item.PriceAlteration[0].Price.TaxIncludedAmount.Value.String())
}
