package invoice

// TaxItemKey clave de agrupación de subtotales de impuesto: misma categoría
// y mismo tipo van al mismo subtotal. El porcentaje se normaliza a dos
// decimales para que la clave sea estable como clave de mapa.
type TaxItemKey struct {
	CategoryCode string
	PercentFixed string
}

// KeyFor clave de agrupación para una categoría dada.
func KeyFor(cat TaxCategory) TaxItemKey {
	return TaxItemKey{
		CategoryCode: cat.Code(),
		PercentFixed: cat.Percent().StringFixed(2),
	}
}
