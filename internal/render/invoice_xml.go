package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/invoice"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// Namespaces UBL 2.1 e identificadores PEPPOL BIS Billing 3.0.
const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	customizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	profileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
)

// FormatXML formato de los sobres con XML serializado.
const FormatXML = "xml"

// InvoiceToXML serializa la factura estructurada como UBL Invoice. La
// factura se valida antes; el documento resultante se canoniza (c14n) y se
// reindenta para que la salida sea estable byte a byte.
type InvoiceToXML struct {
	log zerolog.Logger
}

// NewInvoiceToXML serializador UBL.
func NewInvoiceToXML(l *logger.Logger) *InvoiceToXML {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &InvoiceToXML{log: zl}
}

// RenderAll serializa una colección. El primer error aborta el lote.
func (r *InvoiceToXML) RenderAll(envs []Envelope[*invoice.Invoice]) ([]Envelope[string], error) {
	out := make([]Envelope[string], 0, len(envs))
	for _, env := range envs {
		x, err := r.Render(env)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// Render valida y serializa una factura. Una factura no conforme devuelve
// el *domain.ValidationError con todos los problemas, sin emitir nada.
func (r *InvoiceToXML) Render(env Envelope[*invoice.Invoice]) (Envelope[string], error) {
	var empty Envelope[string]

	inv := env.Content
	if err := inv.Validate(); err != nil {
		r.log.Error().Str("name", env.Name).Err(err).Msg("factura no conforme")
		return empty, err
	}

	doc := buildUBL(inv)

	canonical, err := canonicalize(doc)
	if err != nil {
		return empty, fmt.Errorf("render: canonizar %s: %w", env.Name, err)
	}

	pretty := etree.NewDocument()
	if err := pretty.ReadFromBytes(canonical); err != nil {
		return empty, fmt.Errorf("render: releer el canónico de %s: %w", env.Name, err)
	}
	pretty.Indent(2)
	out, err := pretty.WriteToString()
	if err != nil {
		return empty, fmt.Errorf("render: serializar %s: %w", env.Name, err)
	}

	r.log.Info().Str("name", env.Name).Int("bytes", len(out)).Msg("XML UBL emitido")
	return Rewrap(env, xml.Header+out, FormatXML), nil
}

func canonicalize(doc *etree.Document) ([]byte, error) {
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return c14n.Canonicalize(xml.NewDecoder(bytes.NewReader(raw)))
}

func buildUBL(inv *invoice.Invoice) *etree.Document {
	doc := etree.NewDocument()

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("xmlns:cac", nsCac)
	root.CreateAttr("xmlns:cbc", nsCbc)

	text(root, "cbc:CustomizationID", customizationID)
	text(root, "cbc:ProfileID", profileID)
	text(root, "cbc:ID", inv.Number)
	text(root, "cbc:IssueDate", inv.IssueDate.Format("2006-01-02"))
	text(root, "cbc:DueDate", inv.DueDate.Format("2006-01-02"))
	text(root, "cbc:InvoiceTypeCode", inv.TypeCode)
	for _, note := range inv.Notes {
		text(root, "cbc:Note", note)
	}
	text(root, "cbc:DocumentCurrencyCode", inv.Currency)
	text(root, "cbc:BuyerReference", inv.BuyerReference)

	if inv.Period != nil {
		period := root.CreateElement("cac:InvoicePeriod")
		text(period, "cbc:StartDate", inv.Period.Start.Format("2006-01-02"))
		text(period, "cbc:EndDate", inv.Period.End.Format("2006-01-02"))
	}

	writeParty(root, "cac:AccountingSupplierParty", inv.Supplier)
	writeParty(root, "cac:AccountingCustomerParty", inv.Customer)

	writeTaxTotal(root, inv)
	writeMonetaryTotal(root, inv)
	for _, line := range inv.Lines {
		writeLine(root, line, inv.Currency)
	}

	return doc
}

func writeParty(parent *etree.Element, tag string, p invoice.Party) {
	wrapper := parent.CreateElement(tag)
	party := wrapper.CreateElement("cac:Party")

	if p.ElectronicAddress.Value != "" {
		ep := party.CreateElement("cbc:EndpointID")
		ep.CreateAttr("schemeID", p.ElectronicAddress.SchemeID)
		ep.SetText(p.ElectronicAddress.Value)
	}
	if p.ID != "" {
		pid := party.CreateElement("cac:PartyIdentification")
		text(pid, "cbc:ID", p.ID)
	}
	if p.Name != "" {
		pn := party.CreateElement("cac:PartyName")
		text(pn, "cbc:Name", p.Name)
	}

	addr := party.CreateElement("cac:PostalAddress")
	text(addr, "cbc:StreetName", p.Address.Street)
	if p.Address.AdditionalStreet != "" {
		text(addr, "cbc:AdditionalStreetName", p.Address.AdditionalStreet)
	}
	text(addr, "cbc:CityName", p.Address.City)
	text(addr, "cbc:PostalZone", p.Address.PostalZone)
	if p.Address.Province != "" {
		text(addr, "cbc:CountrySubentity", p.Address.Province)
	}
	country := addr.CreateElement("cac:Country")
	text(country, "cbc:IdentificationCode", p.Address.CountryCode)

	// BR-O-02: sin identificador fiscal no se emite PartyTaxScheme.
	if p.TaxID != "" {
		pts := party.CreateElement("cac:PartyTaxScheme")
		text(pts, "cbc:CompanyID", p.TaxID)
		scheme := pts.CreateElement("cac:TaxScheme")
		text(scheme, "cbc:ID", "VAT")
	}

	ple := party.CreateElement("cac:PartyLegalEntity")
	text(ple, "cbc:RegistrationName", p.Name)
	if p.CompanyID != "" {
		cid := ple.CreateElement("cbc:CompanyID")
		scheme := p.ElectronicAddress.SchemeID
		if scheme == "" {
			scheme = schemeDUNS
		}
		cid.CreateAttr("schemeID", scheme)
		cid.SetText(p.CompanyID)
	}

	if p.ContactEmail != "" {
		contact := party.CreateElement("cac:Contact")
		text(contact, "cbc:ElectronicMail", p.ContactEmail)
	}
}

func writeTaxTotal(parent *etree.Element, inv *invoice.Invoice) {
	tt := parent.CreateElement("cac:TaxTotal")
	amount(tt, "cbc:TaxAmount", inv.Totals.TaxAmount, inv.Currency)

	for _, sub := range inv.Subtotals {
		ts := tt.CreateElement("cac:TaxSubtotal")
		amount(ts, "cbc:TaxableAmount", sub.TaxableAmount, inv.Currency)
		amount(ts, "cbc:TaxAmount", sub.TaxAmount, inv.Currency)
		writeCategory(ts, "cac:TaxCategory", sub.Category)
	}
}

func writeCategory(parent *etree.Element, tag string, cat invoice.TaxCategory) {
	el := parent.CreateElement(tag)
	text(el, "cbc:ID", cat.Code())
	if cat.Code() != "O" {
		text(el, "cbc:Percent", cat.Percent().StringFixed(2))
	} else if reason := cat.ExemptionReason(); reason != "" {
		text(el, "cbc:TaxExemptionReason", reason)
	}
	scheme := el.CreateElement("cac:TaxScheme")
	text(scheme, "cbc:ID", "VAT")
}

func writeMonetaryTotal(parent *etree.Element, inv *invoice.Invoice) {
	lmt := parent.CreateElement("cac:LegalMonetaryTotal")
	amount(lmt, "cbc:LineExtensionAmount", inv.Totals.LineExtension, inv.Currency)
	amount(lmt, "cbc:TaxExclusiveAmount", inv.Totals.TaxExclusive, inv.Currency)
	amount(lmt, "cbc:TaxInclusiveAmount", inv.Totals.TaxInclusive, inv.Currency)
	amount(lmt, "cbc:PayableAmount", inv.Totals.Payable, inv.Currency)
}

func writeLine(parent *etree.Element, line invoice.Line, currency string) {
	el := parent.CreateElement("cac:InvoiceLine")
	text(el, "cbc:ID", line.ID)

	qty := el.CreateElement("cbc:InvoicedQuantity")
	qty.CreateAttr("unitCode", line.UnitCode)
	qty.SetText(line.Quantity)

	amount(el, "cbc:LineExtensionAmount", line.Amount, currency)

	if line.Period != nil {
		period := el.CreateElement("cac:InvoicePeriod")
		text(period, "cbc:StartDate", line.Period.Start.Format("2006-01-02"))
		text(period, "cbc:EndDate", line.Period.End.Format("2006-01-02"))
	}

	item := el.CreateElement("cac:Item")
	if line.Description != "" {
		text(item, "cbc:Description", line.Description)
	}
	text(item, "cbc:Name", line.Name)
	if line.SellerItemID != "" {
		sid := item.CreateElement("cac:SellersItemIdentification")
		text(sid, "cbc:ID", line.SellerItemID)
	}
	writeCategory(item, "cac:ClassifiedTaxCategory", line.Category)

	price := el.CreateElement("cac:Price")
	amount(price, "cbc:PriceAmount", line.UnitPrice, currency)
}

func text(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func amount(parent *etree.Element, tag string, value decimal.Decimal, currency string) {
	el := parent.CreateElement(tag)
	el.CreateAttr("currencyID", currency)
	el.SetText(value.StringFixed(2))
}
