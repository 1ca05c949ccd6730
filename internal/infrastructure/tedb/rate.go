package tedb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// RateSource encadena las tres llamadas TEDB para resolver el tipo estándar
// de IVA de un país. Trabaja sobre el API, de modo que con un CachedClient
// cada paso intermedio queda cacheado.
type RateSource struct {
	api API
	log zerolog.Logger
}

// NewRateSource fuente de tipos sobre el cliente dado.
func NewRateSource(api API, l *logger.Logger) *RateSource {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &RateSource{api: api, log: zl}
}

// CountryIDFor id interno de TEDB para un código ISO. Compara contra el
// código por defecto y el alternativo (GR/EL, GB/UK) sin distinguir
// mayúsculas.
func (s *RateSource) CountryIDFor(ctx context.Context, countryCode string) (string, error) {
	configs, err := s.api.GetConfigurations(ctx)
	if err != nil {
		return "", err
	}
	for _, country := range configs.Countries {
		if strings.EqualFold(country.DefaultCountryCode, countryCode) ||
			(country.AlternativeCountryCode != "" && strings.EqualFold(country.AlternativeCountryCode, countryCode)) {
			return fmt.Sprintf("%d", country.ID), nil
		}
	}
	return "", fmt.Errorf("tedb: el país %q no está en el mapa de TEDB", countryCode)
}

// VATRateInCountryAtDate tipo estándar de IVA de un país a una fecha, como
// fracción (0.22 para un 22%).
func (s *RateSource) VATRateInCountryAtDate(ctx context.Context, countryCode string, date time.Time) (decimal.Decimal, error) {
	countryID, err := s.CountryIDFor(ctx, countryCode)
	if err != nil {
		return decimal.Zero, err
	}

	sr, err := s.api.SearchTaxes(ctx, countryID, TaxTypeVAT, date)
	if err != nil {
		return decimal.Zero, err
	}
	if len(sr.Result) == 0 {
		return decimal.Zero, fmt.Errorf("tedb: sin IVA para %s a fecha %s", countryCode, date.Format("2006-01-02"))
	}
	if len(sr.Result) > 1 {
		s.log.Warn().
			Str("country", countryCode).
			Int("taxes", len(sr.Result)).
			Msg("TEDB devuelve más de un IVA para el país; se usa el primero")
	}
	tv := sr.Result[0]

	rate, err := s.api.GetTaxRate(ctx, tv.TaxID, tv.VersionDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rate.VatRateStructure == nil || rate.VatRateStructure.StandardRate == nil {
		return decimal.Zero, fmt.Errorf("tedb: impuesto %s sin tipo estándar", tv.TaxID)
	}
	return rate.VatRateStructure.StandardRate.Rate.Fraction()
}
