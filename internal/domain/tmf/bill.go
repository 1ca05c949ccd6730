package tmf

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerBill factura de cliente TMF678. Es la raíz desde la que el motor
// construye el bill of materials.
type CustomerBill struct {
	ID                string             `json:"id"`
	Href              string             `json:"href,omitempty"`
	BillNo            string             `json:"billNo,omitempty"`
	BillDate          *time.Time         `json:"billDate,omitempty"`
	PaymentDueDate    *time.Time         `json:"paymentDueDate,omitempty"`
	BillingPeriod     *TimePeriod        `json:"billingPeriod,omitempty"`
	State             string             `json:"state,omitempty"`
	Category          string             `json:"category,omitempty"`
	AmountDue         *Money             `json:"amountDue,omitempty"`
	TaxExcludedAmount *Money             `json:"taxExcludedAmount,omitempty"`
	TaxIncludedAmount *Money             `json:"taxIncludedAmount,omitempty"`
	RelatedParty      []RelatedParty     `json:"relatedParty,omitempty"`
	BillingAccount    *BillingAccountRef `json:"billingAccount,omitempty"`
}

// BillingAccountRef referencia a la cuenta de facturación de una factura.
type BillingAccountRef struct {
	ID   string `json:"id"`
	Href string `json:"href,omitempty"`
	Name string `json:"name,omitempty"`
}

// AppliedBillingTaxRate impuesto aplicado a un cargo. El tipo va como
// fracción (0.22 para un 22%).
type AppliedBillingTaxRate struct {
	TaxCategory string          `json:"taxCategory,omitempty"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	TaxAmount   *Money          `json:"taxAmount,omitempty"`
}

// ProductRef referencia del cargo a su producto.
type ProductRef struct {
	ID   string `json:"id"`
	Href string `json:"href,omitempty"`
	Name string `json:"name,omitempty"`
}

// BillRef referencia del cargo a su factura.
type BillRef struct {
	ID   string `json:"id"`
	Href string `json:"href,omitempty"`
}

// AppliedCustomerBillingRate cargo individual TMF678: una línea facturable
// con su importe sin impuestos, su periodo y su producto.
type AppliedCustomerBillingRate struct {
	ID                string                  `json:"id"`
	Href              string                  `json:"href,omitempty"`
	Name              string                  `json:"name,omitempty"`
	Description       string                  `json:"description,omitempty"`
	Date              *time.Time              `json:"date,omitempty"`
	IsBilled          bool                    `json:"isBilled,omitempty"`
	Type              string                  `json:"type,omitempty"`
	PeriodCoverage    *TimePeriod             `json:"periodCoverage,omitempty"`
	TaxExcludedAmount *Money                  `json:"taxExcludedAmount,omitempty"`
	TaxIncludedAmount *Money                  `json:"taxIncludedAmount,omitempty"`
	AppliedTax        []AppliedBillingTaxRate `json:"appliedTax,omitempty"`
	Product           *ProductRef             `json:"product,omitempty"`
	Bill              *BillRef                `json:"bill,omitempty"`
}
