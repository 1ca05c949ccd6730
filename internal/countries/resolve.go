package countries

import "strings"

// byName nombres comunes (en inglés y local) a ISO 3166-1 alfa-2. Cubre la
// UE más los países EFTA que maneja el motor.
var byName = map[string]string{
	"austria": "AT", "österreich": "AT",
	"belgium": "BE", "belgique": "BE", "belgië": "BE",
	"bulgaria": "BG",
	"croatia":  "HR", "hrvatska": "HR",
	"cyprus":  "CY",
	"czechia": "CZ", "czech republic": "CZ",
	"denmark": "DK", "danmark": "DK",
	"estonia": "EE", "eesti": "EE",
	"finland": "FI", "suomi": "FI",
	"france":  "FR",
	"germany": "DE", "deutschland": "DE",
	"greece": "GR", "hellas": "GR",
	"hungary": "HU", "magyarország": "HU",
	"iceland": "IS", "ísland": "IS",
	"ireland": "IE",
	"italy":   "IT", "italia": "IT",
	"latvia":  "LV", "latvija": "LV",
	"liechtenstein": "LI",
	"lithuania":     "LT", "lietuva": "LT",
	"luxembourg": "LU",
	"malta":      "MT",
	"netherlands": "NL", "nederland": "NL", "holland": "NL",
	"norway": "NO", "norge": "NO",
	"poland": "PL", "polska": "PL",
	"portugal": "PT",
	"romania":  "RO", "românia": "RO",
	"slovakia": "SK", "slovensko": "SK",
	"slovenia": "SI", "slovenija": "SI",
	"spain":    "ES", "españa": "ES", "espana": "ES",
	"sweden": "SE", "sverige": "SE",
	"switzerland": "CH", "schweiz": "CH", "suisse": "CH",
	"united kingdom": "GB", "great britain": "GB",
	"united states": "US", "usa": "US",
}

// Resolve normaliza un nombre o código de país a ISO 3166-1 alfa-2. Acepta
// códigos alfa-2 directamente (UK se normaliza a GB) y nombres comunes sin
// distinguir mayúsculas. Devuelve cadena vacía si no reconoce la entrada.
func Resolve(nameOrCode string) string {
	s := strings.TrimSpace(nameOrCode)
	if s == "" {
		return ""
	}
	if len(s) == 2 {
		code := strings.ToUpper(s)
		if code == "UK" {
			return "GB"
		}
		if code == "EL" {
			return "GR"
		}
		return code
	}
	if code, ok := byName[strings.ToLower(s)]; ok {
		return code
	}
	return ""
}

// Same compara dos países sin distinguir mayúsculas ni formato de entrada.
func Same(a, b string) bool {
	ra, rb := Resolve(a), Resolve(b)
	return ra != "" && ra == rb
}
