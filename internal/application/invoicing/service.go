package invoicing

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
	"github.com/dome-marketplace/invoicing-engine/internal/render"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
	"github.com/dome-marketplace/invoicing-engine/pkg/naming"
)

// InvoicingService orquesta la cadena completa: BOM, factura estructurada,
// XML, HTML, PDF y paquetes ZIP, en forma individual y en lote.
type InvoicingService struct {
	boms      *BomService
	toInvoice *render.BomToInvoice
	toXML     *render.InvoiceToXML
	toHTML    *render.XMLToHTML
	toPDF     *render.HTMLToPDF
	log       zerolog.Logger
}

// NewInvoicingService orquestador sobre el agregador y los renderizadores.
func NewInvoicingService(boms *BomService, toInvoice *render.BomToInvoice, toXML *render.InvoiceToXML,
	toHTML *render.XMLToHTML, toPDF *render.HTMLToPDF, l *logger.Logger) *InvoicingService {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &InvoicingService{
		boms:      boms,
		toInvoice: toInvoice,
		toXML:     toXML,
		toHTML:    toHTML,
		toPDF:     toPDF,
		log:       zl,
	}
}

// InvoiceXML factura de un bill como XML UBL.
func (s *InvoicingService) InvoiceXML(ctx context.Context, billID string) (render.Envelope[string], error) {
	var empty render.Envelope[string]
	bomEnv, err := s.boms.BomFor(ctx, billID)
	if err != nil {
		return empty, err
	}
	invEnv, err := s.toInvoice.Render(bomEnv)
	if err != nil {
		return empty, err
	}
	return s.toXML.Render(invEnv)
}

// InvoiceHTML factura de un bill como HTML.
func (s *InvoicingService) InvoiceHTML(ctx context.Context, billID string) (render.Envelope[string], error) {
	xml, err := s.InvoiceXML(ctx, billID)
	if err != nil {
		return render.Envelope[string]{}, err
	}
	return s.toHTML.Render(xml)
}

// InvoicePDF factura de un bill como PDF.
func (s *InvoicingService) InvoicePDF(ctx context.Context, billID string) (render.Envelope[[]byte], error) {
	html, err := s.InvoiceHTML(ctx, billID)
	if err != nil {
		return render.Envelope[[]byte]{}, err
	}
	return s.toPDF.Render(html)
}

// InvoicesXML facturas del rango como XML UBL. El primer fallo aborta el
// lote completo.
func (s *InvoicingService) InvoicesXML(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) ([]render.Envelope[string], error) {
	bomEnvs, err := s.boms.BomsFor(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return nil, err
	}
	invEnvs, err := s.toInvoice.RenderAll(bomEnvs)
	if err != nil {
		return nil, err
	}
	return s.toXML.RenderAll(invEnvs)
}

// InvoicesHTML facturas del rango como HTML.
func (s *InvoicingService) InvoicesHTML(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) ([]render.Envelope[string], error) {
	xmls, err := s.InvoicesXML(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return nil, err
	}
	return s.toHTML.RenderAll(xmls)
}

// InvoicesPDF facturas del rango como PDF.
func (s *InvoicingService) InvoicesPDF(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) ([]render.Envelope[[]byte], error) {
	htmls, err := s.InvoicesHTML(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return nil, err
	}
	return s.toPDF.RenderAll(htmls)
}

// InvoicesXMLZip ZIP con los XML del rango, como sobre nombrado.
func (s *InvoicingService) InvoicesXMLZip(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) (render.Envelope[[]byte], error) {
	var empty render.Envelope[[]byte]
	xmls, err := s.InvoicesXML(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return empty, err
	}
	data, err := render.Pack(xmls, s.log)
	if err != nil {
		return empty, err
	}
	return zipEnvelope(data, xmls), nil
}

// InvoicesHTMLZip ZIP con los HTML del rango, como sobre nombrado.
func (s *InvoicingService) InvoicesHTMLZip(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) (render.Envelope[[]byte], error) {
	var empty render.Envelope[[]byte]
	htmls, err := s.InvoicesHTML(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return empty, err
	}
	data, err := render.Pack(htmls, s.log)
	if err != nil {
		return empty, err
	}
	return zipEnvelope(data, htmls), nil
}

// InvoicesPDFZip ZIP con los PDF del rango, como sobre nombrado.
func (s *InvoicingService) InvoicesPDFZip(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) (render.Envelope[[]byte], error) {
	var empty render.Envelope[[]byte]
	pdfs, err := s.InvoicesPDF(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return empty, err
	}
	data, err := render.Pack(pdfs, s.log)
	if err != nil {
		return empty, err
	}
	return zipEnvelope(data, pdfs), nil
}

// InvoicesZipPerInvoice ZIP con un ZIP anidado por factura, cada uno con su
// XML, su HTML y su PDF, como sobre nombrado.
func (s *InvoicingService) InvoicesZipPerInvoice(ctx context.Context, buyerID, sellerID string, from, to *tmf.TimePeriod) (render.Envelope[[]byte], error) {
	var empty render.Envelope[[]byte]
	xmls, err := s.InvoicesXML(ctx, buyerID, sellerID, from, to)
	if err != nil {
		return empty, err
	}
	htmls, err := s.toHTML.RenderAll(xmls)
	if err != nil {
		return empty, err
	}
	pdfs, err := s.toPDF.RenderAll(htmls)
	if err != nil {
		return empty, err
	}
	data, err := render.PackPerInvoice(s.log, render.AsBinary(xmls), render.AsBinary(htmls), pdfs)
	if err != nil {
		return empty, err
	}
	return zipEnvelope(data, xmls), nil
}

// zipEnvelope nombra el paquete con el primer nombre no vacío de los sobres
// de origen, saneado como nombre de archivo.
func zipEnvelope[T any](content []byte, sources []render.Envelope[T]) render.Envelope[[]byte] {
	names := make([]string, 0, len(sources))
	for _, env := range sources {
		names = append(names, env.Name)
	}
	return render.NewEnvelope(content, naming.Sanitize(naming.FirstNonBlank(names)), render.FormatZip)
}
