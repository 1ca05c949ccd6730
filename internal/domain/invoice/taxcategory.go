package invoice

import "github.com/shopspring/decimal"

// TaxCategory clasificación fiscal de una línea o subtotal. Es un tipo
// cerrado: solo las tres variantes de este paquete lo implementan.
type TaxCategory interface {
	// Code código UNCL5305 de la categoría ("S", "Z" u "O").
	Code() string
	// Percent tipo impositivo en porcentaje (22 para un 22%).
	Percent() decimal.Decimal
	// ExemptionReason motivo de exención, vacío salvo para NotSubject.
	ExemptionReason() string

	sealed()
}

// StandardRated categoría S: gravada al tipo estándar del país.
type StandardRated struct {
	Rate decimal.Decimal // tipo en porcentaje, > 0
}

func (s StandardRated) Code() string             { return "S" }
func (s StandardRated) Percent() decimal.Decimal { return s.Rate }
func (s StandardRated) ExemptionReason() string  { return "" }
func (StandardRated) sealed()                    {}

// ZeroRated categoría Z: operación intracomunitaria o de exportación al 0%.
type ZeroRated struct{}

func (ZeroRated) Code() string             { return "Z" }
func (ZeroRated) Percent() decimal.Decimal { return decimal.Zero }
func (ZeroRated) ExemptionReason() string  { return "" }
func (ZeroRated) sealed()                  {}

// NotSubject categoría O: fuera del ámbito del impuesto. Lleva siempre un
// motivo de exención.
type NotSubject struct {
	Reason string
}

func (n NotSubject) Code() string            { return "O" }
func (NotSubject) Percent() decimal.Decimal  { return decimal.Zero }
func (n NotSubject) ExemptionReason() string { return n.Reason }
func (NotSubject) sealed()                   {}
