package invoicing_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dome-marketplace/invoicing-engine/internal/application/invoicing"
	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/bom"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

// ----------------------------------------------------------------------------
// Backend TMF falso
// ----------------------------------------------------------------------------

// backendFalso implementa todos los puertos de lectura sobre mapas en memoria.
type backendFalso struct {
	bills     map[string]*tmf.CustomerBill
	rates     map[string][]tmf.AppliedCustomerBillingRate
	products  map[string]*tmf.Product
	offerings map[string]*tmf.ProductOffering
	orgs      map[string]*tmf.Organization
	accounts  map[string][]tmf.BillingAccount
}

func (f *backendFalso) GetCustomerBill(_ context.Context, id string) (*tmf.CustomerBill, error) {
	if b, ok := f.bills[id]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("factura %s no existe", id)
}

func (f *backendFalso) ListCustomerBills(_ context.Context, _ invoicing.BillFilter) ([]tmf.CustomerBill, error) {
	var out []tmf.CustomerBill
	for _, b := range f.bills {
		out = append(out, *b)
	}
	return out, nil
}

func (f *backendFalso) ListAppliedRates(_ context.Context, billID string) ([]tmf.AppliedCustomerBillingRate, error) {
	return f.rates[billID], nil
}

func (f *backendFalso) GetProduct(_ context.Context, id string) (*tmf.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("producto %s no existe", id)
}

func (f *backendFalso) GetProductOffering(_ context.Context, id string) (*tmf.ProductOffering, error) {
	if o, ok := f.offerings[id]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("oferta %s no existe", id)
}

func (f *backendFalso) GetOrganization(_ context.Context, id string) (*tmf.Organization, error) {
	if o, ok := f.orgs[id]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("organización %s no existe", id)
}

func (f *backendFalso) ListBillingAccounts(_ context.Context, partyID string) ([]tmf.BillingAccount, error) {
	return f.accounts[partyID], nil
}

func backendCompleto() *backendFalso {
	return &backendFalso{
		bills: map[string]*tmf.CustomerBill{
			"urn:ngsi-ld:customer-bill:001": {
				ID: "urn:ngsi-ld:customer-bill:001",
				RelatedParty: []tmf.RelatedParty{
					{ID: "org-seller", Role: "Seller"},
					{ID: "org-buyer", Role: "Buyer"},
				},
			},
		},
		rates: map[string][]tmf.AppliedCustomerBillingRate{
			"urn:ngsi-ld:customer-bill:001": {
				{ID: "rate-1", Product: &tmf.ProductRef{ID: "prod-1"}},
			},
		},
		products: map[string]*tmf.Product{
			"prod-1": {ID: "prod-1", Name: "Cloud", ProductOffering: &tmf.ProductOfferingRef{ID: "off-1"}},
		},
		offerings: map[string]*tmf.ProductOffering{
			"off-1": {ID: "off-1", Name: "Cloud Offering"},
		},
		orgs: map[string]*tmf.Organization{
			"org-seller": {ID: "org-seller", TradingName: "ACME"},
			"org-buyer":  {ID: "org-buyer", TradingName: "Cliente"},
		},
		accounts: map[string][]tmf.BillingAccount{
			"org-seller": {{ID: "acc-seller"}},
			"org-buyer":  {{ID: "acc-buyer"}, {ID: "acc-buyer-2"}},
		},
	}
}

func servicioDe(f *backendFalso, selector invoicing.AccountSelector) *invoicing.BomService {
	return invoicing.NewBomService(f, f, f, f, f, f, selector, nil)
}

// ----------------------------------------------------------------------------
// BomFor
// ----------------------------------------------------------------------------

func TestBomFor_AgregaTodoElMaterial(t *testing.T) {
	svc := servicioDe(backendCompleto(), nil)

	env, err := svc.BomFor(context.Background(), "urn:ngsi-ld:customer-bill:001")
	require.NoError(t, err)

	assert.Equal(t, "inv-001", env.Name)
	assert.Equal(t, invoicing.FormatBom, env.Format)

	b := env.Content
	assert.Len(t, b.Rates, 1)
	assert.Contains(t, b.Products, "prod-1")
	assert.Contains(t, b.Offerings, "off-1")

	seller, err := b.Seller()
	require.NoError(t, err)
	assert.Equal(t, "ACME", seller.TradingName)

	// La estrategia por defecto elige la primera cuenta de cada parte.
	acc, ok := b.AccountFor(bom.RoleBuyer)
	require.True(t, ok)
	assert.Equal(t, "acc-buyer", acc.ID)
}

func TestBomFor_SelectorPropio(t *testing.T) {
	ultima := func(role string, accounts []tmf.BillingAccount) (tmf.BillingAccount, bool) {
		if len(accounts) == 0 {
			return tmf.BillingAccount{}, false
		}
		return accounts[len(accounts)-1], true
	}
	svc := servicioDe(backendCompleto(), ultima)

	env, err := svc.BomFor(context.Background(), "urn:ngsi-ld:customer-bill:001")
	require.NoError(t, err)

	acc, ok := env.Content.AccountFor(bom.RoleBuyer)
	require.True(t, ok)
	assert.Equal(t, "acc-buyer-2", acc.ID)
}

func TestBomFor_FacturaInexistente(t *testing.T) {
	svc := servicioDe(backendCompleto(), nil)

	_, err := svc.BomFor(context.Background(), "urn:no-existe")
	require.Error(t, err)

	var eerr *domain.ExternalServiceError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "customerBill.get", eerr.Op)
}

func TestBomFor_ProductoRoto(t *testing.T) {
	f := backendCompleto()
	delete(f.products, "prod-1")
	svc := servicioDe(f, nil)

	_, err := svc.BomFor(context.Background(), "urn:ngsi-ld:customer-bill:001")
	require.Error(t, err)

	var eerr *domain.ExternalServiceError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "product.get", eerr.Op)
}

// ----------------------------------------------------------------------------
// BomsFor: filtrado en proceso por rol
// ----------------------------------------------------------------------------

func TestBomsFor_FiltraPorRolDeParte(t *testing.T) {
	f := backendCompleto()
	// Segunda factura con otro comprador.
	f.bills["urn:ngsi-ld:customer-bill:002"] = &tmf.CustomerBill{
		ID: "urn:ngsi-ld:customer-bill:002",
		RelatedParty: []tmf.RelatedParty{
			{ID: "org-seller", Role: "Seller"},
			{ID: "org-otro", Role: "Buyer"},
		},
	}
	f.orgs["org-otro"] = &tmf.Organization{ID: "org-otro"}
	svc := servicioDe(f, nil)

	envs, err := svc.BomsFor(context.Background(), "org-buyer", "", nil, nil)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, "urn:ngsi-ld:customer-bill:001", envs[0].Content.Bill.ID)

	// El mismo id con el rol equivocado no casa.
	envs, err = svc.BomsFor(context.Background(), "org-seller", "", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, envs)

	// Por vendedor casan las dos.
	envs, err = svc.BomsFor(context.Background(), "", "org-seller", nil, nil)
	require.NoError(t, err)
	assert.Len(t, envs, 2)
}

// ----------------------------------------------------------------------------
// Nombre del sobre
// ----------------------------------------------------------------------------

func TestBomFor_NombreConUUIDDeRespaldo(t *testing.T) {
	f := backendCompleto()
	// Un id cuyo último segmento no deja nada alfanumérico.
	f.bills["urn:raro:---"] = &tmf.CustomerBill{ID: "urn:raro:---"}
	svc := servicioDe(f, nil)

	env, err := svc.BomFor(context.Background(), "urn:raro:---")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(env.Name, "inv-"))
	sufijo := strings.TrimPrefix(env.Name, "inv-")
	assert.Len(t, sufijo, 32)
	assert.NotContains(t, sufijo, "-")
}
