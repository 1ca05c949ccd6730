// Package invoicing agrega los datos de facturación de los servicios TMF en
// BOMs y orquesta su renderizado a factura electrónica en XML, HTML, PDF y
// paquetes ZIP.
package invoicing

import (
	"context"
	"time"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

// BillFilter criterios de listado de facturas de cliente. Los ids de parte
// se refinan después en proceso: el API upstream solo admite un filtro por
// relatedParty.id.
type BillFilter struct {
	RelatedPartyID string
	From           *time.Time
	To             *time.Time
}

// CustomerBillReader lectura de facturas TMF678.
type CustomerBillReader interface {
	GetCustomerBill(ctx context.Context, id string) (*tmf.CustomerBill, error)
	ListCustomerBills(ctx context.Context, filter BillFilter) ([]tmf.CustomerBill, error)
}

// AppliedRateReader lectura de cargos TMF678 por factura.
type AppliedRateReader interface {
	ListAppliedRates(ctx context.Context, billID string) ([]tmf.AppliedCustomerBillingRate, error)
}

// ProductReader lectura de productos TMF637.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*tmf.Product, error)
}

// OfferingReader lectura de ofertas de catálogo TMF620.
type OfferingReader interface {
	GetProductOffering(ctx context.Context, id string) (*tmf.ProductOffering, error)
}

// OrganizationReader lectura de organizaciones TMF632.
type OrganizationReader interface {
	GetOrganization(ctx context.Context, id string) (*tmf.Organization, error)
}

// AccountReader lectura de cuentas de facturación TMF666 por parte.
type AccountReader interface {
	ListBillingAccounts(ctx context.Context, relatedPartyID string) ([]tmf.BillingAccount, error)
}

// AccountSelector estrategia de elección de cuenta cuando una parte tiene
// varias. Devuelve false si ninguna sirve.
type AccountSelector func(role string, accounts []tmf.BillingAccount) (tmf.BillingAccount, bool)

// FirstAccount estrategia por defecto: la primera cuenta de la lista.
func FirstAccount(role string, accounts []tmf.BillingAccount) (tmf.BillingAccount, bool) {
	if len(accounts) == 0 {
		return tmf.BillingAccount{}, false
	}
	return accounts[0], true
}
