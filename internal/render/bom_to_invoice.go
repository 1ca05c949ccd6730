package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/bom"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/invoice"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// FormatInvoice formato de los sobres con factura estructurada.
const FormatInvoice = "invoice"

const exemptionText = "Not subject to VAT"

var hundred = decimal.NewFromInt(100)

// BomToInvoice convierte un BOM en la factura estructurada: clasifica cada
// cargo fiscalmente, agrupa subtotales por categoría y calcula los totales a
// partir de las líneas, nunca de los importes del bill.
type BomToInvoice struct {
	now func() time.Time
	log zerolog.Logger
}

// NewBomToInvoice conversor de BOM a factura.
func NewBomToInvoice(l *logger.Logger) *BomToInvoice {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &BomToInvoice{now: time.Now, log: zl}
}

// RenderAll convierte una colección de BOMs. El primer error aborta el lote.
func (r *BomToInvoice) RenderAll(envs []Envelope[*bom.InvoiceBom]) ([]Envelope[*invoice.Invoice], error) {
	out := make([]Envelope[*invoice.Invoice], 0, len(envs))
	for _, env := range envs {
		inv, err := r.Render(env)
		if err != nil {
			r.log.Error().Str("name", env.Name).Err(err).Msg("fallo al convertir el BOM")
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

// Render convierte un BOM en factura. El nombre del sobre se conserva.
func (r *BomToInvoice) Render(env Envelope[*bom.InvoiceBom]) (Envelope[*invoice.Invoice], error) {
	var empty Envelope[*invoice.Invoice]

	b := env.Content
	if b == nil {
		return empty, fmt.Errorf("%w: el sobre no contiene BOM", domain.ErrInvalidInput)
	}
	r.log.Info().Str("name", env.Name).Msg("convirtiendo BOM a factura")

	supplierOrg, err := b.Seller()
	if err != nil {
		return empty, err
	}
	customerOrg, err := b.Buyer()
	if err != nil {
		return empty, err
	}

	supplierCountry := countryOf(supplierOrg)
	customerCountry := countryOf(customerOrg)
	r.warnUnsupported(supplierCountry, "Supplier")
	r.warnUnsupported(customerCountry, "Customer")

	supplierID := extractIdentifier(supplierOrg, supplierCountry)
	customerID := extractIdentifier(customerOrg, customerCountry)
	if supplierID == "" {
		r.log.Warn().Str("organization", supplierOrg.ID).Msg("organización sin identificador")
	}

	supplierScheme := selectScheme(supplierID, supplierCountry)
	customerScheme := selectScheme(customerID, customerCountry)

	// BR-O-02: con líneas exentas y sin identificador del proveedor no se
	// puede emitir PartyTaxScheme.
	hasExemption := r.containsExemptLines(b, supplierID)
	includeTaxScheme := !hasExemption
	if hasExemption {
		r.log.Info().Msg("exención detectada; se omite el esquema fiscal de las partes")
	}

	cb := b.Bill
	currency := r.currencyOf(cb)

	issueDate := r.now()
	if cb.BillDate != nil {
		issueDate = *cb.BillDate
	} else {
		r.log.Warn().Str("bill", cb.ID).Msg("factura sin billDate; usando el momento actual")
	}

	dueDate := issueDate
	if cb.PaymentDueDate != nil {
		dueDate = *cb.PaymentDueDate
	} else {
		r.log.Info().Str("bill", cb.ID).Msg("sin fecha de vencimiento; usando la de emisión")
	}

	buyerRef := strings.TrimSpace(customerOrg.TradingName)
	if buyerRef == "" {
		buyerRef = "N/A"
		r.log.Info().Str("bill", cb.ID).Msg("sin referencia del comprador; usando N/A")
	}

	lines := r.buildLines(b, supplierID, currency)
	subtotals, taxTotal := r.buildSubtotals(b, supplierID)
	totals := r.buildTotals(b, taxTotal)

	inv := &invoice.Invoice{
		Number:         cb.ID,
		TypeCode:       invoice.TypeCodeInvoice,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		Currency:       currency,
		BuyerReference: buyerRef,
		Notes:          []string{r.buildNote(supplierCountry, b, supplierID)},
		Supplier:       r.buildParty(supplierOrg, supplierID, supplierScheme, includeTaxScheme, b, bom.RoleSeller),
		Customer:       r.buildParty(customerOrg, customerID, customerScheme, includeTaxScheme, b, bom.RoleBuyer),
		Lines:          lines,
		Subtotals:      subtotals,
		Totals:         totals,
	}
	if bp := cb.BillingPeriod; bp != nil && bp.StartDateTime != nil && bp.EndDateTime != nil {
		inv.Period = &invoice.Period{Start: *bp.StartDateTime, End: *bp.EndDateTime}
	}

	r.log.Info().Str("bill", cb.ID).Int("lines", len(lines)).Msg("factura estructurada lista")
	return Rewrap(env, inv, FormatInvoice), nil
}

func (r *BomToInvoice) warnUnsupported(countryCode, role string) {
	if countryCode == "" {
		r.log.Warn().Str("role", role).Msg("país de la parte ausente")
		return
	}
	if !supportedCountry(countryCode) {
		r.log.Warn().
			Str("role", role).
			Str("country", countryCode).
			Msg("país fuera de UE/EFTA/UK; soporte limitado")
	}
}

// currencyOf divisa del bill: importe con impuestos, sin impuestos o EUR.
func (r *BomToInvoice) currencyOf(cb tmf.CustomerBill) string {
	if cb.TaxIncludedAmount != nil && cb.TaxIncludedAmount.Unit != "" {
		return cb.TaxIncludedAmount.Unit
	}
	if cb.TaxExcludedAmount != nil && cb.TaxExcludedAmount.Unit != "" {
		return cb.TaxExcludedAmount.Unit
	}
	r.log.Warn().Str("bill", cb.ID).Msg("bill sin divisa; usando EUR")
	return "EUR"
}

// classify categoría fiscal de una línea: tipo positivo S, tipo cero con
// proveedor identificado Z, resto O con motivo de exención.
func classify(ratePct decimal.Decimal, supplierID string) invoice.TaxCategory {
	switch {
	case ratePct.IsPositive():
		return invoice.StandardRated{Rate: ratePct}
	case strings.TrimSpace(supplierID) != "":
		return invoice.ZeroRated{}
	default:
		return invoice.NotSubject{Reason: exemptionText}
	}
}

// ratePctOf tipo del primer impuesto aplicado del cargo, en porcentaje.
func ratePctOf(rate tmf.AppliedCustomerBillingRate) decimal.Decimal {
	if len(rate.AppliedTax) == 0 {
		return decimal.Zero
	}
	return rate.AppliedTax[0].TaxRate.Mul(hundred)
}

func amountOf(rate tmf.AppliedCustomerBillingRate) decimal.Decimal {
	if rate.TaxExcludedAmount == nil {
		return decimal.Zero.Round(2)
	}
	return rate.TaxExcludedAmount.Value.Round(2)
}

func (r *BomToInvoice) buildLines(b *bom.InvoiceBom, supplierID, currency string) []invoice.Line {
	var lines []invoice.Line
	for i, rate := range b.Rates {
		amount := amountOf(rate)
		cat := classify(ratePctOf(rate), supplierID)

		productName := "Product"
		if p, ok := b.ProductFor(rate); ok && p.Name != "" {
			productName = p.Name
		}

		line := invoice.Line{
			ID:           strconv.Itoa(i + 1),
			SellerItemID: rate.ID,
			Name:         productName,
			Quantity:     "1",
			UnitCode:     "EA",
			UnitPrice:    amount,
			Amount:       amount,
			Category:     cat,
		}
		if amount.IsNegative() {
			// Línea de descuento: cantidad -1 y precio en positivo.
			line.Name = "Discount: " + productName
			line.Quantity = "-1"
			line.UnitPrice = amount.Abs()
		}
		line.Description = line.Name
		if pc := rate.PeriodCoverage; pc != nil && pc.StartDateTime != nil && pc.EndDateTime != nil {
			line.Period = &invoice.Period{Start: *pc.StartDateTime, End: *pc.EndDateTime}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		r.log.Warn().Msg("el BOM no produce ninguna línea de factura")
	}
	return lines
}

// buildSubtotals agrupa los cargos por categoría y tipo, preservando el
// orden de aparición, y devuelve también la suma total de impuestos.
func (r *BomToInvoice) buildSubtotals(b *bom.InvoiceBom, supplierID string) ([]invoice.TaxSubtotal, decimal.Decimal) {
	type bucket struct {
		taxable decimal.Decimal
		tax     decimal.Decimal
		cat     invoice.TaxCategory
	}
	var order []invoice.TaxItemKey
	buckets := make(map[invoice.TaxItemKey]*bucket)

	for _, rate := range b.Rates {
		amount := amountOf(rate)
		ratePct := ratePctOf(rate)
		cat := classify(ratePct, supplierID)

		lineTax := decimal.Zero
		if len(rate.AppliedTax) > 0 {
			// Round redondea los medios alejándose del cero, también en los
			// importes negativos de las líneas de descuento.
			lineTax = amount.Mul(rate.AppliedTax[0].TaxRate).Round(2)
		}

		key := invoice.KeyFor(cat)
		bk, ok := buckets[key]
		if !ok {
			bk = &bucket{taxable: decimal.Zero, tax: decimal.Zero, cat: cat}
			buckets[key] = bk
			order = append(order, key)
		}
		bk.taxable = bk.taxable.Add(amount)
		bk.tax = bk.tax.Add(lineTax)
	}

	taxTotal := decimal.Zero.Round(2)
	subtotals := make([]invoice.TaxSubtotal, 0, len(order))
	for _, key := range order {
		bk := buckets[key]
		subtotals = append(subtotals, invoice.TaxSubtotal{
			TaxableAmount: bk.taxable.Round(2),
			TaxAmount:     bk.tax.Round(2),
			Category:      bk.cat,
		})
		taxTotal = taxTotal.Add(bk.tax)
	}
	return subtotals, taxTotal.Round(2)
}

// buildTotals totales a partir de la suma real de las líneas.
func (r *BomToInvoice) buildTotals(b *bom.InvoiceBom, taxTotal decimal.Decimal) invoice.Totals {
	lineExtension := decimal.Zero.Round(2)
	for _, rate := range b.Rates {
		lineExtension = lineExtension.Add(amountOf(rate))
	}
	taxInclusive := lineExtension.Add(taxTotal).Round(2)
	return invoice.Totals{
		LineExtension: lineExtension.Round(2),
		TaxExclusive:  lineExtension.Round(2),
		TaxAmount:     taxTotal,
		TaxInclusive:  taxInclusive,
		Payable:       taxInclusive,
	}
}

func (r *BomToInvoice) buildParty(org tmf.Organization, id, scheme string, includeTaxScheme bool, b *bom.InvoiceBom, role string) invoice.Party {
	name := strings.TrimSpace(org.TradingName)
	if name == "" {
		name = org.Name
	}

	country := countryOf(org)
	party := invoice.Party{
		ID:           org.ID,
		Name:         name,
		CountryCode:  country,
		CompanyID:    id,
		ContactEmail: org.PreferredEmail(),
	}
	if id != "" && scheme != "" {
		party.ElectronicAddress = invoice.ElectronicAddress{SchemeID: scheme, Value: id}
	} else {
		r.log.Warn().Str("role", role).Msg("parte sin dirección electrónica")
	}
	if includeTaxScheme && id != "" {
		party.TaxID = strings.ToUpper(country) + id
	}
	party.Address = r.buildAddress(b, role, country)
	return party
}

// buildAddress dirección postal desde la cuenta de facturación del rol, con
// valores por defecto donde falten datos.
func (r *BomToInvoice) buildAddress(b *bom.InvoiceBom, role, country string) invoice.PostalAddress {
	addr := invoice.PostalAddress{
		Street:      "N/A",
		City:        "N/A",
		PostalZone:  "00000",
		CountryCode: country,
	}
	if addr.CountryCode == "" {
		addr.CountryCode = "XX"
	}
	acc, ok := b.AccountFor(role)
	if !ok {
		return addr
	}
	if pa := acc.PostalAddress(); pa != nil {
		if pa.Street1 != "" {
			addr.Street = pa.Street1
		}
		addr.AdditionalStreet = pa.Street2
		if pa.City != "" {
			addr.City = pa.City
		}
		if pa.PostCode != "" {
			addr.PostalZone = pa.PostCode
		}
		addr.Province = pa.StateOrProvince
	}
	return addr
}

// containsExemptLines hay exención cuando el proveedor no tiene
// identificador y alguna línea va sin impuesto o a tipo cero.
func (r *BomToInvoice) containsExemptLines(b *bom.InvoiceBom, supplierID string) bool {
	if strings.TrimSpace(supplierID) != "" {
		return false
	}
	for _, rate := range b.Rates {
		if len(rate.AppliedTax) == 0 {
			return true
		}
		if rate.AppliedTax[0].TaxRate.IsZero() {
			return true
		}
	}
	return false
}

// buildNote nota descriptiva: país de emisión, régimen fiscal dominante y
// compatibilidad PEPPOL.
func (r *BomToInvoice) buildNote(supplierCountry string, b *bom.InvoiceBom, supplierID string) string {
	var parts []string
	if strings.TrimSpace(supplierCountry) != "" {
		parts = append(parts, "Invoice issued in "+supplierCountry)
	}
	parts = append(parts, r.taxRegime(b, supplierID))
	parts = append(parts, "Electronic invoice compatible with PEPPOL BIS 3.0")
	return strings.Join(parts, "; ")
}

// taxRegime régimen dominante de la factura: S gana a Z, Z gana a O.
func (r *BomToInvoice) taxRegime(b *bom.InvoiceBom, supplierID string) string {
	regime := "O"
	for _, rate := range b.Rates {
		switch classify(ratePctOf(rate), supplierID).Code() {
		case "S":
			regime = "S"
		case "Z":
			if regime != "S" {
				regime = "Z"
			}
		}
		if regime == "S" {
			break
		}
	}
	switch regime {
	case "S":
		return "VAT applies - normal regime"
	case "Z":
		return "VAT not charged - zero-rated transaction"
	default:
		return "VAT not applicable - exempted"
	}
}
