package invoicing

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/bom"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
	"github.com/dome-marketplace/invoicing-engine/internal/render"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// FormatBom formato de los sobres que produce el agregador.
const FormatBom = "bom"

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// BomService agrega, para cada factura de cliente, todo lo que hace falta
// para emitirla: cargos, productos, ofertas, organizaciones y cuentas.
type BomService struct {
	bills     CustomerBillReader
	rates     AppliedRateReader
	products  ProductReader
	offerings OfferingReader
	orgs      OrganizationReader
	accounts  AccountReader
	selector  AccountSelector
	log       zerolog.Logger
}

// NewBomService agregador con la estrategia de cuenta dada. Un selector nil
// equivale a FirstAccount.
func NewBomService(bills CustomerBillReader, rates AppliedRateReader, products ProductReader,
	offerings OfferingReader, orgs OrganizationReader, accounts AccountReader,
	selector AccountSelector, l *logger.Logger) *BomService {
	if selector == nil {
		selector = FirstAccount
	}
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &BomService{
		bills:     bills,
		rates:     rates,
		products:  products,
		offerings: offerings,
		orgs:      orgs,
		accounts:  accounts,
		selector:  selector,
		log:       zl,
	}
}

// BomsFor agrega los BOMs de todas las facturas que casan con comprador,
// vendedor y rango de fechas. El API upstream solo filtra por una parte, así
// que comprador y vendedor se comprueban aquí contra los roles de cada
// factura.
func (s *BomService) BomsFor(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) ([]render.Envelope[*bom.InvoiceBom], error) {
	filter := BillFilter{}
	if buyerID != "" {
		filter.RelatedPartyID = buyerID
	}
	if sellerID != "" {
		filter.RelatedPartyID = sellerID
	}
	if from != nil {
		filter.From = from.StartDateTime
	}
	if to != nil {
		filter.To = to.EndDateTime
	}

	bills, err := s.bills.ListCustomerBills(ctx, filter)
	if err != nil {
		return nil, domain.NewExternalServiceError("customerBill.list", err)
	}
	s.log.Debug().Int("bills", len(bills)).Msg("facturas de cliente candidatas")

	var out []render.Envelope[*bom.InvoiceBom]
	for _, cb := range bills {
		if buyerID != "" && !hasPartyWithRole(cb.RelatedParty, buyerID, bom.RoleBuyer) {
			continue
		}
		if sellerID != "" && !hasPartyWithRole(cb.RelatedParty, sellerID, bom.RoleSeller) {
			continue
		}
		env, err := s.BomFor(ctx, cb.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	s.log.Debug().
		Int("boms", len(out)).
		Str("buyer", buyerID).
		Str("seller", sellerID).
		Msg("BOMs agregados")
	return out, nil
}

// BomFor agrega el BOM de una factura concreta.
func (s *BomService) BomFor(ctx context.Context, customerBillID string) (render.Envelope[*bom.InvoiceBom], error) {
	var empty render.Envelope[*bom.InvoiceBom]

	cb, err := s.bills.GetCustomerBill(ctx, customerBillID)
	if err != nil {
		return empty, domain.NewExternalServiceError("customerBill.get", err)
	}
	b := bom.New(*cb)

	rates, err := s.rates.ListAppliedRates(ctx, cb.ID)
	if err != nil {
		return empty, domain.NewExternalServiceError("appliedCustomerBillingRate.list", err)
	}
	b.Rates = rates

	for _, rate := range rates {
		if rate.Product == nil || rate.Product.ID == "" {
			continue
		}
		p, err := s.products.GetProduct(ctx, rate.Product.ID)
		if err != nil {
			return empty, domain.NewExternalServiceError("product.get", err)
		}
		b.Products[p.ID] = *p
	}

	for _, p := range b.Products {
		if p.ProductOffering == nil || p.ProductOffering.ID == "" {
			continue
		}
		o, err := s.offerings.GetProductOffering(ctx, p.ProductOffering.ID)
		if err != nil {
			return empty, domain.NewExternalServiceError("productOffering.get", err)
		}
		b.Offerings[o.ID] = *o
	}

	for _, party := range cb.RelatedParty {
		if party.Role == "" || party.ID == "" {
			continue
		}
		org, err := s.orgs.GetOrganization(ctx, party.ID)
		if err != nil {
			return empty, domain.NewExternalServiceError("organization.get", err)
		}
		b.Organizations[party.Role] = *org
	}

	for _, role := range []string{bom.RoleSeller, bom.RoleBuyer} {
		org, ok := b.Organizations[role]
		if !ok {
			continue
		}
		accounts, err := s.accounts.ListBillingAccounts(ctx, org.ID)
		if err != nil {
			return empty, domain.NewExternalServiceError("billingAccount.list", err)
		}
		if acc, ok := s.selector(role, accounts); ok {
			b.Accounts[role] = acc
		} else {
			s.log.Warn().Str("role", role).Str("organization", org.ID).Msg("parte sin cuenta de facturación")
		}
	}

	return render.NewEnvelope(b, invoiceName(customerBillID), FormatBom), nil
}

// invoiceName nombre del sobre: "inv-" más la parte alfanumérica del último
// segmento del id de la factura. Si no queda nada, un sufijo uuid.
func invoiceName(customerBillID string) string {
	last := customerBillID
	if i := strings.LastIndex(customerBillID, ":"); i >= 0 {
		last = customerBillID[i+1:]
	}
	clean := nonAlnum.ReplaceAllString(last, "")
	if clean == "" {
		clean = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return "inv-" + clean
}

func hasPartyWithRole(parties []tmf.RelatedParty, id, role string) bool {
	for _, p := range parties {
		if p.ID == id && strings.EqualFold(p.Role, role) {
			return true
		}
	}
	return false
}
