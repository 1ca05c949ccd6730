package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// FormatHTML formato de los sobres con HTML.
const FormatHTML = "html"

//go:embed templates/invoice.html.tmpl
var invoiceTemplate string

type htmlParty struct {
	Name       string
	Street     string
	City       string
	PostalZone string
	Country    string
	TaxID      string
	Endpoint   string
}

type htmlLine struct {
	ID       string
	Name     string
	Quantity string
	Price    string
	Category string
	Percent  string
	Amount   string
}

type htmlSubtotal struct {
	Category string
	Percent  string
	Taxable  string
	Tax      string
}

type htmlTotals struct {
	LineExtension string
	TaxExclusive  string
	Tax           string
	Payable       string
}

type htmlView struct {
	Number         string
	IssueDate      string
	DueDate        string
	Currency       string
	BuyerReference string
	Notes          []string
	Supplier       htmlParty
	Customer       htmlParty
	Lines          []htmlLine
	Subtotals      []htmlSubtotal
	Totals         htmlTotals
}

// XMLToHTML transforma el XML UBL en una vista HTML imprimible. Trabaja
// sobre el XML ya emitido, no sobre la factura estructurada, para que
// cualquier XML conforme sea renderizable.
type XMLToHTML struct {
	tmpl *template.Template
	log  zerolog.Logger
}

// NewXMLToHTML renderizador HTML con la plantilla embebida.
func NewXMLToHTML(l *logger.Logger) (*XMLToHTML, error) {
	tmpl, err := template.New("invoice").Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: plantilla HTML inválida: %w", err)
	}
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &XMLToHTML{tmpl: tmpl, log: zl}, nil
}

// RenderAll transforma una colección. El primer error aborta el lote.
func (r *XMLToHTML) RenderAll(envs []Envelope[string]) ([]Envelope[string], error) {
	out := make([]Envelope[string], 0, len(envs))
	for _, env := range envs {
		h, err := r.Render(env)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Render transforma un XML UBL en HTML.
func (r *XMLToHTML) Render(env Envelope[string]) (Envelope[string], error) {
	var empty Envelope[string]

	doc := etree.NewDocument()
	if err := doc.ReadFromString(env.Content); err != nil {
		return empty, fmt.Errorf("render: XML de %s no interpretable: %w", env.Name, err)
	}
	root := doc.Root()
	if root == nil {
		return empty, fmt.Errorf("render: XML de %s sin raíz", env.Name)
	}

	view := viewFromUBL(root)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return empty, fmt.Errorf("render: HTML de %s: %w", env.Name, err)
	}

	r.log.Info().Str("name", env.Name).Int("bytes", buf.Len()).Msg("HTML emitido")
	return Rewrap(env, buf.String(), FormatHTML), nil
}

func viewFromUBL(root *etree.Element) htmlView {
	view := htmlView{
		Number:         textOf(root, "cbc:ID"),
		IssueDate:      textOf(root, "cbc:IssueDate"),
		DueDate:        textOf(root, "cbc:DueDate"),
		Currency:       textOf(root, "cbc:DocumentCurrencyCode"),
		BuyerReference: textOf(root, "cbc:BuyerReference"),
		Supplier:       partyFromUBL(root.FindElement("cac:AccountingSupplierParty/cac:Party")),
		Customer:       partyFromUBL(root.FindElement("cac:AccountingCustomerParty/cac:Party")),
	}
	for _, note := range root.FindElements("cbc:Note") {
		view.Notes = append(view.Notes, note.Text())
	}

	for _, el := range root.FindElements("cac:InvoiceLine") {
		line := htmlLine{
			ID:       textOf(el, "cbc:ID"),
			Name:     textOf(el, "cac:Item/cbc:Name"),
			Quantity: textOf(el, "cbc:InvoicedQuantity"),
			Price:    textOf(el, "cac:Price/cbc:PriceAmount"),
			Category: textOf(el, "cac:Item/cac:ClassifiedTaxCategory/cbc:ID"),
			Percent:  textOf(el, "cac:Item/cac:ClassifiedTaxCategory/cbc:Percent"),
			Amount:   textOf(el, "cbc:LineExtensionAmount"),
		}
		view.Lines = append(view.Lines, line)
	}

	for _, el := range root.FindElements("cac:TaxTotal/cac:TaxSubtotal") {
		view.Subtotals = append(view.Subtotals, htmlSubtotal{
			Category: textOf(el, "cac:TaxCategory/cbc:ID"),
			Percent:  textOf(el, "cac:TaxCategory/cbc:Percent"),
			Taxable:  textOf(el, "cbc:TaxableAmount"),
			Tax:      textOf(el, "cbc:TaxAmount"),
		})
	}

	if lmt := root.FindElement("cac:LegalMonetaryTotal"); lmt != nil {
		view.Totals = htmlTotals{
			LineExtension: textOf(lmt, "cbc:LineExtensionAmount"),
			TaxExclusive:  textOf(lmt, "cbc:TaxExclusiveAmount"),
			Tax:           textOf(root, "cac:TaxTotal/cbc:TaxAmount"),
			Payable:       textOf(lmt, "cbc:PayableAmount"),
		}
	}
	return view
}

func partyFromUBL(party *etree.Element) htmlParty {
	if party == nil {
		return htmlParty{}
	}
	out := htmlParty{
		Name:       textOf(party, "cac:PartyName/cbc:Name"),
		Street:     textOf(party, "cac:PostalAddress/cbc:StreetName"),
		City:       textOf(party, "cac:PostalAddress/cbc:CityName"),
		PostalZone: textOf(party, "cac:PostalAddress/cbc:PostalZone"),
		Country:    textOf(party, "cac:PostalAddress/cac:Country/cbc:IdentificationCode"),
		TaxID:      textOf(party, "cac:PartyTaxScheme/cbc:CompanyID"),
	}
	if ep := party.FindElement("cbc:EndpointID"); ep != nil {
		out.Endpoint = ep.Text()
		if attr := ep.SelectAttr("schemeID"); attr != nil {
			out.Endpoint = attr.Value + ":" + ep.Text()
		}
	}
	if out.Name == "" {
		out.Name = textOf(party, "cac:PartyLegalEntity/cbc:RegistrationName")
	}
	return out
}

func textOf(parent *etree.Element, path string) string {
	if el := parent.FindElement(path); el != nil {
		return el.Text()
	}
	return ""
}
