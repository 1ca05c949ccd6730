// Package invoice modela la factura electrónica estructurada que produce el
// motor: cabecera, partes, líneas, subtotales de impuesto y totales, lista
// para serializarse como UBL compatible con PEPPOL BIS 3.0.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Códigos de tipo de documento UNCL1001.
const (
	TypeCodeInvoice    = "380"
	TypeCodeCreditNote = "381"
)

// ElectronicAddress dirección electrónica PEPPOL de una parte: esquema EAS
// más identificador ya normalizado.
type ElectronicAddress struct {
	SchemeID string
	Value    string
}

// PostalAddress dirección postal de una parte.
type PostalAddress struct {
	Street           string
	AdditionalStreet string
	City             string
	PostalZone       string
	Province         string
	CountryCode      string
}

// Party parte de la factura (proveedor o comprador).
type Party struct {
	ID                string // id de la organización upstream
	Name              string
	CountryCode       string
	TaxID             string
	CompanyID         string
	ElectronicAddress ElectronicAddress
	Address           PostalAddress
	ContactEmail      string
}

// Line línea de factura. La cantidad es "-1" en líneas de descuento, con el
// importe ya negado.
type Line struct {
	ID           string
	SellerItemID string // id del cargo upstream que originó la línea
	Description  string
	Name         string
	Quantity     string
	UnitCode     string
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal
	Period       *Period
	Category     TaxCategory
}

// Period periodo cubierto por una línea o por la factura.
type Period struct {
	Start time.Time
	End   time.Time
}

// TaxSubtotal subtotal de impuesto por categoría y tipo.
type TaxSubtotal struct {
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	Category      TaxCategory
}

// Totals totales monetarios de la factura.
type Totals struct {
	LineExtension decimal.Decimal
	TaxExclusive  decimal.Decimal
	TaxAmount     decimal.Decimal
	TaxInclusive  decimal.Decimal
	Payable       decimal.Decimal
}

// Invoice factura estructurada completa.
type Invoice struct {
	Number         string
	TypeCode       string
	IssueDate      time.Time
	DueDate        time.Time
	Currency       string
	BuyerReference string
	Notes          []string
	Period         *Period
	Supplier       Party
	Customer       Party
	Lines          []Line
	Subtotals      []TaxSubtotal
	Totals         Totals
}
