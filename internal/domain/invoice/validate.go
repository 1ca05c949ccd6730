package invoice

import (
	"fmt"

	"github.com/dome-marketplace/invoicing-engine/internal/domain"
)

// Validate comprueba la conformidad mínima de la factura antes de
// serializarla. Devuelve un *domain.ValidationError con TODOS los errores y
// avisos encontrados, o nil si la factura es renderizable.
func (inv *Invoice) Validate() error {
	var errs, warns []string

	if inv.Number == "" {
		errs = append(errs, "falta el número de factura")
	}
	if inv.IssueDate.IsZero() {
		errs = append(errs, "falta la fecha de emisión")
	}
	if inv.Currency == "" {
		errs = append(errs, "falta la divisa del documento")
	}
	if len(inv.Lines) == 0 {
		errs = append(errs, "la factura no tiene líneas")
	}

	errs = append(errs, validateParty("proveedor", inv.Supplier)...)
	errs = append(errs, validateParty("comprador", inv.Customer)...)

	for i, ln := range inv.Lines {
		if ln.Category == nil {
			errs = append(errs, fmt.Sprintf("línea %d sin categoría de impuesto", i+1))
		}
		if ln.Description == "" && ln.Name == "" {
			warns = append(warns, fmt.Sprintf("línea %d sin descripción", i+1))
		}
	}

	if inv.BuyerReference == "" {
		warns = append(warns, "sin referencia del comprador")
	}
	if inv.Supplier.TaxID == "" {
		warns = append(warns, "proveedor sin identificador fiscal")
	}
	if inv.DueDate.IsZero() {
		warns = append(warns, "sin fecha de vencimiento")
	}

	if len(errs) == 0 {
		return nil
	}
	return &domain.ValidationError{Errors: errs, Warnings: warns}
}

func validateParty(role string, p Party) []string {
	var errs []string
	if p.Name == "" {
		errs = append(errs, fmt.Sprintf("%s sin nombre legal", role))
	}
	if p.CountryCode == "" {
		errs = append(errs, fmt.Sprintf("%s sin país", role))
	}
	if p.ElectronicAddress.Value == "" {
		errs = append(errs, fmt.Sprintf("%s sin dirección electrónica", role))
	}
	return errs
}
