// Package tmf modela las entidades TM Forum que el motor lee de los
// servicios upstream (bills, rates aplicados, productos, ofertas,
// organizaciones y cuentas de facturación). Solo los campos que el motor
// consume; el wire schema completo pertenece a los servicios upstream.
package tmf

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money un importe con su divisa (unit). El valor se maneja siempre como
// decimal para evitar deriva de céntimos en los cálculos.
type Money struct {
	Unit  string          `json:"unit,omitempty"`
	Value decimal.Decimal `json:"value"`
}

// TimePeriod periodo cubierto por un cargo.
type TimePeriod struct {
	StartDateTime *time.Time `json:"startDateTime,omitempty"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty"`
}
