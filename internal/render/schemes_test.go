package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

func TestNormalizeIdentifier(t *testing.T) {
	casos := []struct {
		raw      string
		country  string
		esperado string
	}{
		{"VAT IT-12345678901", "IT", "12345678901"},
		{"it 12345678901", "IT", "12345678901"},
		{"DE 123.456_789", "DE", "123456789"},
		{"12345678901", "IT", "12345678901"},
		{"  ", "IT", ""},
		{"VATIT", "IT", ""},
		{"ITVAT123", "IT", "123"}, // país delante del literal VAT
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, normalizeIdentifier(c.raw, c.country), c.raw)
	}
}

func TestNormalizeIdentifier_Idempotente(t *testing.T) {
	for _, raw := range []string{"VAT IT-12345678901", "ITVAT123", "VAT-IT-123"} {
		una := normalizeIdentifier(raw, "IT")
		dos := normalizeIdentifier(una, "IT")
		assert.Equal(t, una, dos, raw)
	}
}

func TestSelectScheme(t *testing.T) {
	casos := []struct {
		id       string
		country  string
		esperado string
	}{
		{"billing@acme.it", "IT", "EM"},
		{"5798000000000", "DK", "0088"}, // GLN de 13 dígitos
		{"123456789", "IT", "0060"},     // DUNS de 9 dígitos
		{"12345678901", "IT", "0210"},
		{"12345678901", "FR", "0009"},
		{"12345678901", "PL", "0060"}, // país sin esquema propio
		{"", "IT", ""},
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, selectScheme(c.id, c.country), c.id+" "+c.country)
	}
}

func TestExtractIdentifier_PrioridadReferenciaExterna(t *testing.T) {
	org := tmf.Organization{
		ExternalReference: []tmf.ExternalReference{
			{ExternalReferenceType: "idm_id", Name: "VAT IT-12345678901"},
		},
		ContactMedium: []tmf.ContactMedium{{
			MediumType:     "Email",
			Characteristic: &tmf.MediumCharacteristic{EmailAddress: "billing@acme.it"},
		}},
	}
	assert.Equal(t, "12345678901", extractIdentifier(org, "IT"))
}

func TestExtractIdentifier_EmailDeRespaldo(t *testing.T) {
	org := tmf.Organization{
		ContactMedium: []tmf.ContactMedium{{
			MediumType:     "Email",
			Characteristic: &tmf.MediumCharacteristic{EmailAddress: "billing@acme.it"},
		}},
	}
	// El email se usa tal cual, sin normalizar.
	assert.Equal(t, "billing@acme.it", extractIdentifier(org, "IT"))

	org.ContactMedium[0].Characteristic.EmailAddress = "no-es-un-email"
	assert.Empty(t, extractIdentifier(org, "IT"))
}

func TestCountryOf_SoloAlfa2(t *testing.T) {
	org := tmf.Organization{PartyCharacteristic: []tmf.Characteristic{{Name: "country", Value: " it "}}}
	assert.Equal(t, "IT", countryOf(org))

	org.PartyCharacteristic[0].Value = "Italy"
	assert.Empty(t, countryOf(org))
}

func TestSupportedCountry(t *testing.T) {
	assert.True(t, supportedCountry("it"))
	assert.True(t, supportedCountry("EL"))
	assert.True(t, supportedCountry("CH"))
	assert.True(t, supportedCountry("UK"))
	assert.False(t, supportedCountry("US"))
}
