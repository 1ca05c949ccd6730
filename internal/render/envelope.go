// Package render transforma el BOM de facturación en la factura
// estructurada y la lleva por la cadena de formatos: XML UBL, HTML, PDF y
// archivo ZIP. Cada paso consume y produce sobres con nombre y formato.
package render

// Envelope contenido con nombre lógico y formato ("bom", "xml", "html",
// "pdf"). El nombre viaja intacto por toda la cadena de renderizado y acaba
// dando nombre a las entradas del ZIP.
type Envelope[T any] struct {
	Content T
	Name    string
	Format  string
}

// NewEnvelope sobre con el contenido dado.
func NewEnvelope[T any](content T, name, format string) Envelope[T] {
	return Envelope[T]{Content: content, Name: name, Format: format}
}

// Rewrap conserva nombre y sobre, cambiando contenido y formato.
func Rewrap[T, U any](env Envelope[T], content U, format string) Envelope[U] {
	return Envelope[U]{Content: content, Name: env.Name, Format: format}
}
