package tmf

import "time"

// Price precio unitario con y sin impuestos.
type Price struct {
	TaxRate           float64 `json:"taxRate,omitempty"`
	DutyFreeAmount    *Money  `json:"dutyFreeAmount,omitempty"`
	TaxIncludedAmount *Money  `json:"taxIncludedAmount,omitempty"`
}

// PriceAlteration descuento o recargo aplicado sobre un precio de pedido.
type PriceAlteration struct {
	ApplicationDuration int    `json:"applicationDuration,omitempty"`
	Description         string `json:"description,omitempty"`
	Name                string `json:"name,omitempty"`
	PriceType           string `json:"priceType,omitempty"`
	Priority            int    `json:"priority,omitempty"`
	Price               *Price `json:"price,omitempty"`
}

// OrderPrice precio de un ítem de pedido.
type OrderPrice struct {
	Description           string            `json:"description,omitempty"`
	Name                  string            `json:"name,omitempty"`
	PriceType             string            `json:"priceType,omitempty"`
	RecurringChargePeriod string            `json:"recurringChargePeriod,omitempty"`
	Price                 *Price            `json:"price,omitempty"`
	PriceAlteration       []PriceAlteration `json:"priceAlteration,omitempty"`
}

// ProductOrderItem ítem de un pedido TMF622.
type ProductOrderItem struct {
	ID              string              `json:"id"`
	Action          string              `json:"action,omitempty"`
	Quantity        int                 `json:"quantity,omitempty"`
	ItemPrice       []OrderPrice        `json:"itemPrice,omitempty"`
	ItemTotalPrice  []OrderPrice        `json:"itemTotalPrice,omitempty"`
	ProductOffering *ProductOfferingRef `json:"productOffering,omitempty"`
}

// ProductOrder pedido de producto TMF622. Fuente alternativa del país del
// comprador cuando la organización no lo declara.
type ProductOrder struct {
	ID               string             `json:"id"`
	Href             string             `json:"href,omitempty"`
	State            string             `json:"state,omitempty"`
	OrderDate        *time.Time         `json:"orderDate,omitempty"`
	OrderTotalPrice  []OrderPrice       `json:"orderTotalPrice,omitempty"`
	ProductOrderItem []ProductOrderItem `json:"productOrderItem,omitempty"`
	RelatedParty     []RelatedParty     `json:"relatedParty,omitempty"`
}
