package countries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dome-marketplace/invoicing-engine/internal/countries"
	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

func TestGuessCountry_OrganizacionItaliana(t *testing.T) {
	g, err := countries.NewGuesser()
	require.NoError(t, err)

	org := tmf.Organization{
		ID:          "urn:org:acme",
		TradingName: "ACME S.r.l.",
		ContactMedium: []tmf.ContactMedium{
			{
				MediumType: "Email",
				Characteristic: &tmf.MediumCharacteristic{
					EmailAddress: "fatture@acme.it",
					PhoneNumber:  "+39 06 1234567",
				},
			},
		},
		ExternalReference: []tmf.ExternalReference{
			{ExternalReferenceType: "idm_id", Name: "IT12345678901"},
		},
	}

	results := g.GuessCountry(org)
	require.NotEmpty(t, results)
	// Forma jurídica, VAT, teléfono y dominio casan todos con Italia.
	assert.Equal(t, "IT", results[0].CountryCode)
	assert.GreaterOrEqual(t, results[0].Score, 4)
}

func TestGuessCountry_SinPistas(t *testing.T) {
	g, err := countries.NewGuesser()
	require.NoError(t, err)

	results := g.GuessCountry(tmf.Organization{ID: "urn:org:anon", Name: "Anon"})
	assert.Empty(t, results)
}

func TestGuessCountry_OrdenPorPuntuacion(t *testing.T) {
	g, err := countries.NewGuesser()
	require.NoError(t, err)

	// El email .de puntúa para Alemania; el resto de pistas para Países Bajos.
	org := tmf.Organization{
		ID:          "urn:org:mix",
		TradingName: "Windmolen B.V.",
		ContactMedium: []tmf.ContactMedium{
			{
				MediumType: "Email",
				Characteristic: &tmf.MediumCharacteristic{
					EmailAddress: "info@windmolen.de",
					PhoneNumber:  "+31 20 5551234",
					Country:      "Nederland",
				},
			},
		},
	}

	results := g.GuessCountry(org)
	require.NotEmpty(t, results)
	assert.Equal(t, "NL", results[0].CountryCode)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestNewGuesserFromJSON_Invalido(t *testing.T) {
	_, err := countries.NewGuesserFromJSON([]byte("{no es un array"))
	assert.Error(t, err)
}
