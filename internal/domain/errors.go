// Package domain define los errores transversales del motor de facturación.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores centinela (sin dependencias externas).
var (
	// ErrInvalidInput parámetro requerido nulo o vacío en un punto de entrada público.
	ErrInvalidInput = errors.New("entrada inválida")
	// ErrBadRelatedParty falta el rol buyer/customer o seller en los datos del cliente.
	// Es un error corregible por el llamante, distinto de un fallo de servicio externo.
	ErrBadRelatedParty = errors.New("relatedParty requerido ausente")
	// ErrMissingOrganization el BOM no contiene las organizaciones Seller y Buyer.
	ErrMissingOrganization = errors.New("faltan las organizaciones Seller y Buyer en el BOM")
)

// ExternalServiceError envuelve cualquier fallo de lectura de un colaborador
// externo. Nunca se reintenta internamente; la causa original se conserva.
type ExternalServiceError struct {
	Op  string // operación que fallaba, ej. "customerBill.get"
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("servicio externo: %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// NewExternalServiceError construye el error envolviendo la causa.
func NewExternalServiceError(op string, err error) *ExternalServiceError {
	return &ExternalServiceError{Op: op, Err: err}
}

// ValidationError la factura renderizada no supera la validación de
// conformidad. Lleva la lista completa de errores y avisos; nunca se
// suprime ni se corrige automáticamente.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("error de validación:\n")
	for _, msg := range e.Errors {
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	for _, msg := range e.Warnings {
		sb.WriteString("WARN: ")
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	return sb.String()
}
