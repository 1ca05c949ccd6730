package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// TaxService aplica el IVA calculado sobre cargos de facturación y pedidos.
// Nunca se fía de los impuestos que traigan los datos upstream: recalcula
// siempre. Todos los importes se redondean a dos decimales en cada paso.
type TaxService struct {
	rates    *RateManager
	products ProductReader
	now      func() time.Time
	log      zerolog.Logger
}

// NewTaxService servicio de impuestos sobre el gestor de tipos y el lector de
// productos dados.
func NewTaxService(rates *RateManager, products ProductReader, l *logger.Logger) *TaxService {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &TaxService{rates: rates, products: products, now: time.Now, log: zl}
}

// ApplyTaxesToBillingRates calcula y asigna el IVA de cada cargo, in situ.
// Las partes salen del producto que referencia cada cargo; la fecha, del
// propio cargo. Cargos de un mismo lote pueden facturar productos distintos.
func (s *TaxService) ApplyTaxesToBillingRates(ctx context.Context, rates []tmf.AppliedCustomerBillingRate) ([]tmf.AppliedCustomerBillingRate, error) {
	for i := range rates {
		rate := &rates[i]
		if rate.Product == nil || strings.TrimSpace(rate.Product.ID) == "" {
			return nil, fmt.Errorf("%w: el cargo %s no referencia producto", domain.ErrBadRelatedParty, rate.ID)
		}
		product, err := s.products.GetProduct(ctx, rate.Product.ID)
		if err != nil {
			return nil, domain.NewExternalServiceError("product.get", err)
		}
		buyer, err := BuyerOf(product.RelatedParty)
		if err != nil {
			return nil, err
		}
		seller, err := SellerOf(product.RelatedParty)
		if err != nil {
			return nil, err
		}
		if err := s.applyToRate(ctx, buyer, seller, rate); err != nil {
			return nil, err
		}
	}
	return rates, nil
}

func (s *TaxService) applyToRate(ctx context.Context, buyer, seller tmf.RelatedParty, rate *tmf.AppliedCustomerBillingRate) error {
	vat, err := s.rates.VATRateFor(ctx, buyer, seller, s.DateForVAT(rate))
	if err != nil {
		return err
	}

	if rate.TaxExcludedAmount == nil {
		return fmt.Errorf("%w: el cargo %s no trae taxExcludedAmount", domain.ErrInvalidInput, rate.ID)
	}

	excluded := rate.TaxExcludedAmount.Value.Round(2)
	taxAmount := excluded.Mul(vat).Round(2)

	rate.AppliedTax = []tmf.AppliedBillingTaxRate{{
		TaxCategory: "VAT",
		TaxRate:     vat,
		TaxAmount:   &tmf.Money{Unit: rate.TaxExcludedAmount.Unit, Value: taxAmount},
	}}
	rate.TaxIncludedAmount = &tmf.Money{
		Unit:  rate.TaxExcludedAmount.Unit,
		Value: excluded.Add(taxAmount).Round(2),
	}
	return nil
}

// ApplyTaxesToOrder aplica el IVA a todos los precios de un pedido, in situ.
func (s *TaxService) ApplyTaxesToOrder(ctx context.Context, order *tmf.ProductOrder) (*tmf.ProductOrder, error) {
	buyer, err := BuyerOf(order.RelatedParty)
	if err != nil {
		return nil, err
	}
	seller, err := SellerOf(order.RelatedParty)
	if err != nil {
		return nil, err
	}

	vat, err := s.rates.VATRateFor(ctx, buyer, seller, s.now())
	if err != nil {
		return nil, err
	}

	for i := range order.OrderTotalPrice {
		applyToOrderPrice(&order.OrderTotalPrice[i], vat)
	}
	for i := range order.ProductOrderItem {
		item := &order.ProductOrderItem[i]
		for j := range item.ItemPrice {
			applyToOrderPrice(&item.ItemPrice[j], vat)
		}
		for j := range item.ItemTotalPrice {
			if item.ItemTotalPrice[j].Price != nil {
				applyToOrderPrice(&item.ItemTotalPrice[j], vat)
			}
		}
	}
	return order, nil
}

func applyToOrderPrice(op *tmf.OrderPrice, vat decimal.Decimal) {
	applyToPrice(op.Price, vat)
	for i := range op.PriceAlteration {
		applyToPrice(op.PriceAlteration[i].Price, vat)
	}
}

func applyToPrice(p *tmf.Price, vat decimal.Decimal) {
	if p == nil {
		return
	}
	p.TaxRate, _ = vat.Float64()
	if p.DutyFreeAmount == nil {
		return
	}
	p.TaxIncludedAmount = &tmf.Money{
		Unit:  p.DutyFreeAmount.Unit,
		Value: p.DutyFreeAmount.Value.Mul(decimal.NewFromInt(1).Add(vat)).Round(2),
	}
}

// DateForVAT fecha de devengo del cargo: fin del periodo, inicio del
// periodo, fecha del cargo, y como último recurso el momento actual. Cada
// salto de nivel queda avisado en el log.
func (s *TaxService) DateForVAT(rate *tmf.AppliedCustomerBillingRate) time.Time {
	if pc := rate.PeriodCoverage; pc != nil {
		if pc.EndDateTime != nil {
			return *pc.EndDateTime
		}
		if pc.StartDateTime != nil {
			s.log.Warn().Str("rate", rate.ID).Msg("periodo sin fecha de fin; usando la de inicio")
			return *pc.StartDateTime
		}
	}
	s.log.Warn().Str("rate", rate.ID).Msg("cargo sin periodo; intentando con la fecha del cargo")
	if rate.Date != nil {
		return *rate.Date
	}
	s.log.Warn().Str("rate", rate.ID).Msg("cargo sin fecha; usando el momento actual")
	return s.now()
}

// BuyerOf parte con rol customer, o buyer en su defecto.
func BuyerOf(parties []tmf.RelatedParty) (tmf.RelatedParty, error) {
	if p, ok := partyByRole(parties, "customer"); ok {
		return p, nil
	}
	if p, ok := partyByRole(parties, "buyer"); ok {
		return p, nil
	}
	return tmf.RelatedParty{}, fmt.Errorf("%w: falta el rol buyer/customer", domain.ErrBadRelatedParty)
}

// SellerOf parte con rol seller.
func SellerOf(parties []tmf.RelatedParty) (tmf.RelatedParty, error) {
	if p, ok := partyByRole(parties, "seller"); ok {
		return p, nil
	}
	return tmf.RelatedParty{}, fmt.Errorf("%w: falta el rol seller", domain.ErrBadRelatedParty)
}

func partyByRole(parties []tmf.RelatedParty, role string) (tmf.RelatedParty, bool) {
	for _, p := range parties {
		if strings.EqualFold(p.Role, role) {
			return p, true
		}
	}
	return tmf.RelatedParty{}, false
}
