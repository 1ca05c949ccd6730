package render

import (
	"regexp"
	"strings"

	"github.com/dome-marketplace/invoicing-engine/internal/domain/tmf"
)

var (
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	glnRe   = regexp.MustCompile(`^\d{13}$`)
	dunsRe  = regexp.MustCompile(`^\d{9}$`)

	separatorsRe = regexp.MustCompile(`[-\s_.]`)
	nonIDRe      = regexp.MustCompile(`[^A-Za-z0-9@]`)
)

// euCountries estados miembros de la UE, con el alias EL de Grecia.
var euCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"EL": true, "HU": true, "IE": true, "IT": true, "LV": true, "LT": true,
	"LU": true, "MT": true, "NL": true, "PL": true, "PT": true, "RO": true,
	"SK": true, "SI": true, "ES": true, "SE": true,
}

var eftaCountries = map[string]bool{"NO": true, "IS": true, "LI": true, "CH": true}

// countrySchemes esquemas EAS 0xxx validados por país. Los países sin
// esquema propio publicado caen al DUNS universal.
var countrySchemes = map[string]string{
	"DK": "0184",
	"FI": "0216",
	"SE": "0007",
	"NO": "0192",
	"IS": "0196",
	"EE": "0191",
	"LT": "0200",
	"LV": "0218",
	"NL": "0190",
	"BE": "0208",
	"CH": "0183",
	"DE": "0204",
	"IT": "0210",
	"FR": "0009",
}

const schemeDUNS = "0060"

// supportedCountry indica si el país es UE, EFTA o Reino Unido.
func supportedCountry(code string) bool {
	cc := strings.ToUpper(code)
	return euCountries[cc] || eftaCountries[cc] || cc == "GB" || cc == "UK"
}

// countryOf código de país declarado en la organización, solo si es un
// alfa-2 limpio.
func countryOf(org tmf.Organization) string {
	for _, c := range org.PartyCharacteristic {
		if strings.EqualFold(c.Name, "country") {
			country := strings.ToUpper(strings.TrimSpace(c.Value))
			if len(country) == 2 {
				return country
			}
		}
	}
	return ""
}

// extractIdentifier identificador de la organización: primero el name de un
// externalReference, después un email de contacto válido. El identificador
// de referencia externa se normaliza; el email se usa tal cual.
func extractIdentifier(org tmf.Organization, countryCode string) string {
	for _, er := range org.ExternalReference {
		if raw := strings.TrimSpace(er.Name); raw != "" {
			return normalizeIdentifier(raw, countryCode)
		}
	}
	for _, cm := range org.ContactMedium {
		if !strings.EqualFold(cm.MediumType, "Email") || cm.Characteristic == nil {
			continue
		}
		email := strings.TrimSpace(cm.Characteristic.EmailAddress)
		if emailRe.MatchString(email) {
			return email
		}
	}
	return ""
}

// normalizeIdentifier mayúsculas, sin prefijo VAT ni prefijo de país, sin
// separadores y solo alfanuméricos (más @). Cadena vacía si no sobrevive
// nada. Los prefijos se recortan hasta punto fijo para que el resultado sea
// idempotente aunque país y literal VAT vengan en cualquier orden.
func normalizeIdentifier(raw, countryCode string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	for {
		prev := cleaned
		cleaned = strings.TrimPrefix(cleaned, "VAT")
		if cc != "" {
			cleaned = strings.TrimPrefix(cleaned, cc)
		}
		cleaned = separatorsRe.ReplaceAllString(cleaned, "")
		cleaned = nonIDRe.ReplaceAllString(cleaned, "")
		if cleaned == prev {
			return cleaned
		}
	}
}

// selectScheme esquema EAS para un identificador ya normalizado: email
// siempre EM, GLN de 13 dígitos 0088, DUNS de 9 dígitos 0060, y en último
// término la tabla por país con DUNS como red de seguridad.
func selectScheme(identifier, countryCode string) string {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return ""
	}
	if emailRe.MatchString(id) {
		return "EM"
	}
	if glnRe.MatchString(id) {
		return "0088"
	}
	if dunsRe.MatchString(id) {
		return schemeDUNS
	}
	if scheme, ok := countrySchemes[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return scheme
	}
	return schemeDUNS
}
