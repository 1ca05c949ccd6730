// Package bom define el bill of materials de facturación: el agregado con
// todo lo que hace falta para emitir una factura de un CustomerBill, ya
// resuelto contra los servicios upstream.
package bom

import (
	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

// Roles de organización dentro del BOM.
const (
	RoleSeller = "Seller"
	RoleBuyer  = "Buyer"
)

// InvoiceBom agregado de facturación. Los mapas van indexados por id de la
// entidad upstream.
type InvoiceBom struct {
	Bill          tmf.CustomerBill
	Rates         []tmf.AppliedCustomerBillingRate
	Products      map[string]tmf.Product
	Offerings     map[string]tmf.ProductOffering
	Organizations map[string]tmf.Organization   // por rol: Seller, Buyer
	Accounts      map[string]tmf.BillingAccount // por rol: Seller, Buyer
}

// New BOM vacío con los mapas inicializados.
func New(bill tmf.CustomerBill) *InvoiceBom {
	return &InvoiceBom{
		Bill:          bill,
		Products:      make(map[string]tmf.Product),
		Offerings:     make(map[string]tmf.ProductOffering),
		Organizations: make(map[string]tmf.Organization),
		Accounts:      make(map[string]tmf.BillingAccount),
	}
}

// Seller organización proveedora. Error si el BOM no la trae.
func (b *InvoiceBom) Seller() (tmf.Organization, error) {
	org, ok := b.Organizations[RoleSeller]
	if !ok {
		return tmf.Organization{}, domain.ErrMissingOrganization
	}
	return org, nil
}

// Buyer organización compradora. Error si el BOM no la trae.
func (b *InvoiceBom) Buyer() (tmf.Organization, error) {
	org, ok := b.Organizations[RoleBuyer]
	if !ok {
		return tmf.Organization{}, domain.ErrMissingOrganization
	}
	return org, nil
}

// AccountFor cuenta de facturación de un rol, si el BOM la resolvió.
func (b *InvoiceBom) AccountFor(role string) (tmf.BillingAccount, bool) {
	acc, ok := b.Accounts[role]
	return acc, ok
}

// ProductFor producto referenciado por un cargo, si el BOM lo resolvió.
func (b *InvoiceBom) ProductFor(rate tmf.AppliedCustomerBillingRate) (tmf.Product, bool) {
	if rate.Product == nil {
		return tmf.Product{}, false
	}
	p, ok := b.Products[rate.Product.ID]
	return p, ok
}

// OfferingFor oferta de catálogo de un producto, si el BOM la resolvió.
func (b *InvoiceBom) OfferingFor(p tmf.Product) (tmf.ProductOffering, bool) {
	if p.ProductOffering == nil {
		return tmf.ProductOffering{}, false
	}
	o, ok := b.Offerings[p.ProductOffering.ID]
	return o, ok
}
