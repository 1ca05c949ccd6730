// Package tedb cliente REST del servicio TEDB (Taxes in Europe Database) de
// la Comisión Europea. Expone las tres llamadas que necesita el motor:
// configuraciones (mapa de países), búsqueda de impuestos y consulta de tipo.
package tedb

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Country país conocido por TEDB, con su id interno y sus códigos.
type Country struct {
	ID                     int    `json:"id"`
	Name                   string `json:"name"`
	DefaultCountryCode     string `json:"defaultCountryCode"`
	AlternativeCountryCode string `json:"alternativeCountryCode"`
}

// Configurations respuesta de /configurations. Solo el mapa de países.
type Configurations struct {
	Countries  []Country `json:"countries"`
	UpdateDate string    `json:"updateDate"`
	Version    string    `json:"version"`
}

// TaxVersion versión de un impuesto devuelta por la búsqueda.
type TaxVersion struct {
	TaxID       string `json:"taxId"`
	VersionDate string `json:"versionDate"`
	TaxName     string `json:"taxName"`
	CountryCode string `json:"countryCode"`
	EnglishName string `json:"englishName"`
	SituationOn string `json:"situationOn"`
}

// SearchResult respuesta de /simpleSearch.
type SearchResult struct {
	Errors string       `json:"errors"`
	Result []TaxVersion `json:"result"`
}

// Rate valor de un tipo impositivo. TEDB lo devuelve como texto con el
// símbolo de porcentaje ("22 %").
type Rate struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fraction valor del tipo como fracción: "22 %" -> 0.22.
func (r Rate) Fraction() (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.ReplaceAll(r.Value, " ", ""), "%"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tedb: tipo no numérico %q: %w", r.Value, err)
	}
	return d.Div(decimal.NewFromInt(100)), nil
}

// StandardRate tipo estándar dentro de la estructura de tipos.
type StandardRate struct {
	Rate Rate `json:"rate"`
}

// VatRateStructure estructura de tipos de IVA de un país.
type VatRateStructure struct {
	StandardRate *StandardRate `json:"standardRate"`
}

// TaxRate respuesta de /tax/rate.
type TaxRate struct {
	VatRateStructure *VatRateStructure `json:"vatRateStructure"`
}
