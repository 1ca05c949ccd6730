// Package naming genera y sanea nombres de archivo usados al exportar
// facturas y otros artefactos renderizados.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultName = "inv"
	defaultFile = "file"
)

var (
	specialChars = regexp.MustCompile(`[\\/:*?"<>|.,\-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// stripAccents descompone (NFD) y elimina las marcas diacríticas: "é" -> "e".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize sanea un nombre de archivo: quita acentos, caracteres especiales,
// espacios y no imprimibles. Si el resultado queda vacío devuelve "file".
func Sanitize(filename string) string {
	if strings.TrimSpace(filename) == "" {
		return defaultFile
	}
	out, _, err := transform.String(stripAccents, filename)
	if err != nil {
		out = filename
	}
	out = specialChars.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(out, "")
	out = controlChars.ReplaceAllString(out, "")
	if out == "" {
		return defaultFile
	}
	return out
}

// FirstNonBlank devuelve el primer nombre no vacío de la lista, o "inv" si
// no hay ninguno. Devuelve "" para una lista vacía.
func FirstNonBlank(names []string) string {
	if len(names) == 0 {
		return ""
	}
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return defaultName
}
