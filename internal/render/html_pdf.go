package render

import (
	"bytes"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	mtext "github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// FormatPDF formato de los sobres con PDF.
const FormatPDF = "pdf"

var (
	pdfColorPrimary = &props.Color{Red: 0, Green: 51, Blue: 153}
	pdfColorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// HTMLToPDF imprime la vista HTML como PDF A4. El HTML se interpreta de
// forma tolerante y se reserializa antes de maquetarlo: la entrada puede
// venir de cualquier generador, no solo del propio motor.
type HTMLToPDF struct {
	log zerolog.Logger
}

// NewHTMLToPDF renderizador PDF.
func NewHTMLToPDF(l *logger.Logger) *HTMLToPDF {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &HTMLToPDF{log: zl}
}

// RenderAll imprime una colección. El primer error aborta el lote.
func (r *HTMLToPDF) RenderAll(envs []Envelope[string]) ([]Envelope[[]byte], error) {
	out := make([]Envelope[[]byte], 0, len(envs))
	for _, env := range envs {
		pdf, err := r.Render(env)
		if err != nil {
			return nil, err
		}
		out = append(out, pdf)
	}
	return out, nil
}

// Render imprime un HTML como PDF.
func (r *HTMLToPDF) Render(env Envelope[string]) (Envelope[[]byte], error) {
	var empty Envelope[[]byte]

	doc, err := html.Parse(strings.NewReader(env.Content))
	if err != nil {
		return empty, fmt.Errorf("render: HTML de %s no interpretable: %w", env.Name, err)
	}

	// Reserialización estricta: normaliza lo que el parser tolerante haya
	// tenido que reparar.
	var normalized bytes.Buffer
	if err := html.Render(&normalized, doc); err != nil {
		return empty, fmt.Errorf("render: normalizar HTML de %s: %w", env.Name, err)
	}
	doc, err = html.Parse(&normalized)
	if err != nil {
		return empty, fmt.Errorf("render: releer HTML de %s: %w", env.Name, err)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(env.Name, true).
		Build()
	m := maroto.New(cfg)

	body := findNode(doc, "body")
	if body == nil {
		return empty, fmt.Errorf("render: HTML de %s sin body", env.Name)
	}
	walkBody(m, body)

	generated, err := m.Generate()
	if err != nil {
		return empty, fmt.Errorf("render: PDF de %s: %w", env.Name, err)
	}

	pdf := generated.GetBytes()
	r.log.Info().Str("name", env.Name).Int("bytes", len(pdf)).Msg("PDF emitido")
	return Rewrap(env, pdf, FormatPDF), nil
}

// walkBody recorre los bloques del body y los maqueta como filas maroto.
func walkBody(m core.Maroto, body *html.Node) {
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "h1":
			m.AddRows(row.New(10).Add(col.New(12).Add(
				mtext.New(textContent(n), props.Text{Style: fontstyle.Bold, Size: 14, Color: pdfColorPrimary}),
			)))
			m.AddRows(line.NewRow(2, props.Line{Color: pdfColorPrimary, Thickness: 0.5}))
		case "h2":
			m.AddRows(row.New(7).Add(col.New(12).Add(
				mtext.New(textContent(n), props.Text{Style: fontstyle.Bold, Size: 10, Color: pdfColorPrimary, Top: 1}),
			)))
		case "p":
			for _, lineText := range paragraphLines(n) {
				m.AddRows(row.New(5).Add(col.New(12).Add(
					mtext.New(lineText, props.Text{Size: 9}),
				)))
			}
		case "table":
			addTable(m, n)
		case "div":
			walkBody(m, n)
		}
	}
}

// addTable maqueta una tabla HTML con columnas equidistribuidas.
func addTable(m core.Maroto, table *html.Node) {
	for _, tr := range findAll(table, "tr") {
		var cells []*html.Node
		header := false
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "th" {
				header = true
			}
			if c.Data == "th" || c.Data == "td" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 || len(cells) > 12 {
			continue
		}

		width := 12 / len(cells)
		extra := 12 % len(cells)
		cols := make([]core.Col, 0, len(cells))
		for i, cell := range cells {
			w := width
			if i == len(cells)-1 {
				w += extra
			}
			prop := props.Text{Size: 8}
			if header {
				prop.Style = fontstyle.Bold
				prop.Color = pdfColorPrimary
			}
			cols = append(cols, col.New(w).Add(mtext.New(textContent(cell), prop)))
		}
		m.AddRows(row.New(5).Add(cols...))
	}
	m.AddRows(line.NewRow(2, props.Line{Color: pdfColorGray, Thickness: 0.2}))
}

// paragraphLines trocea un párrafo por sus <br>.
func paragraphLines(p *html.Node) []string {
	var lines []string
	var current strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "br" {
				if s := collapse(current.String()); s != "" {
					lines = append(lines, s)
				}
				current.Reset()
				continue
			}
			if c.Type == html.TextNode {
				current.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(p)
	if s := collapse(current.String()); s != "" {
		lines = append(lines, s)
	}
	return lines
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return collapse(sb.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
