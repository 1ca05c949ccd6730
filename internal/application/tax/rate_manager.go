package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dome-marketplace/invoicing-engine/internal/countries"
	"github.com/dome-marketplace/invoicing-engine/internal/domain"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
	"github.com/dome-marketplace/invoicing-engine/pkg/logger"
)

// RateManager decide el tipo de IVA entre dos partes: operación
// transfronteriza a tipo cero, operación doméstica al tipo estándar del
// país del vendedor.
type RateManager struct {
	rates   RateProvider
	orgs    OrganizationReader
	guesser CountryGuesser
	log     zerolog.Logger
}

// NewRateManager gestor de tipos. El guesser puede ser nil; en ese caso solo
// se usa la característica country de la organización.
func NewRateManager(rates RateProvider, orgs OrganizationReader, guesser CountryGuesser, l *logger.Logger) *RateManager {
	zl := zerolog.Nop()
	if l != nil {
		zl = l.Zerolog()
	}
	return &RateManager{rates: rates, orgs: orgs, guesser: guesser, log: zl}
}

// VATRateFor tipo de IVA entre comprador y vendedor, resolviendo primero el
// país de cada organización.
func (m *RateManager) VATRateFor(ctx context.Context, buyer, seller tmf.RelatedParty, date time.Time) (decimal.Decimal, error) {
	sellerCountry, err := m.CountryCodeFor(ctx, seller)
	if err != nil {
		return decimal.Zero, err
	}
	buyerCountry, err := m.CountryCodeFor(ctx, buyer)
	if err != nil {
		return decimal.Zero, err
	}
	return m.VATRateForCountries(ctx, sellerCountry, buyerCountry, date)
}

// VATRateForCountries tipo de IVA entre dos países a una fecha, como
// fracción. Países distintos (sin distinguir mayúsculas) devuelven cero sin
// consultar TEDB.
func (m *RateManager) VATRateForCountries(ctx context.Context, sellerCountry, buyerCountry string, date time.Time) (decimal.Decimal, error) {
	if strings.TrimSpace(sellerCountry) == "" {
		return decimal.Zero, fmt.Errorf("%w: país del vendedor vacío", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(buyerCountry) == "" {
		return decimal.Zero, fmt.Errorf("%w: país del comprador vacío", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: falta la fecha de la operación", domain.ErrInvalidInput)
	}

	s := strings.ToLower(strings.TrimSpace(sellerCountry))
	b := strings.ToLower(strings.TrimSpace(buyerCountry))
	if s != b {
		m.log.Info().
			Str("seller", sellerCountry).
			Str("buyer", buyerCountry).
			Msg("operación transfronteriza; IVA no aplicable, tipo 0%")
		return decimal.Zero, nil
	}

	rate, err := m.rates.VATRateInCountryAtDate(ctx, sellerCountry, date)
	if err != nil {
		return decimal.Zero, err
	}
	m.log.Info().
		Str("seller", sellerCountry).
		Str("buyer", buyerCountry).
		Str("rate", rate.Mul(decimal.NewFromInt(100)).String()+"%").
		Msg("IVA doméstico aplicable")
	return rate, nil
}

// CountryCodeFor país de la parte: primero la característica country de su
// organización, después el adivinador de pistas si está disponible. La
// característica se normaliza a ISO 3166-1 alfa-2; un valor no reconocible
// se ignora y se sigue con el adivinador.
func (m *RateManager) CountryCodeFor(ctx context.Context, party tmf.RelatedParty) (string, error) {
	org, err := m.orgs.GetOrganization(ctx, party.ID)
	if err != nil {
		return "", domain.NewExternalServiceError("organization.get", err)
	}

	for _, c := range org.PartyCharacteristic {
		if !strings.EqualFold(c.Name, "country") || strings.TrimSpace(c.Value) == "" {
			continue
		}
		if code := countries.Resolve(c.Value); code != "" {
			return code, nil
		}
		m.log.Warn().
			Str("organization", org.ID).
			Str("value", c.Value).
			Msg("característica country no reconocible; se ignora")
	}

	m.log.Warn().Str("organization", org.ID).Msg("organización sin característica country")
	if m.guesser != nil {
		if guesses := m.guesser.GuessCountry(*org); len(guesses) > 0 {
			code := guesses[0].CountryCode
			m.log.Warn().
				Str("organization", org.ID).
				Str("country", code).
				Int("score", guesses[0].Score).
				Msg("usando país ADIVINADO para la organización")
			return code, nil
		}
	}
	return "", nil
}
