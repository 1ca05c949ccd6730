package render

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/rs/zerolog"
)

// FormatZip formato de los sobres con un paquete ZIP.
const FormatZip = "zip"

// Pack empaqueta los sobres en un ZIP en memoria, una entrada por sobre con
// nombre {name}.{format}. Los sobres sin nombre, sin formato o con un
// contenido no empaquetable se saltan con un aviso; una entrada vacía
// produce un ZIP válido vacío.
func Pack[T any](envelopes []Envelope[T], log zerolog.Logger) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, env := range envelopes {
		if env.Name == "" || env.Format == "" {
			log.Warn().Str("name", env.Name).Str("format", env.Format).Msg("sobre sin nombre o formato; se omite del ZIP")
			continue
		}

		var payload []byte
		switch content := any(env.Content).(type) {
		case string:
			payload = []byte(content)
		case []byte:
			payload = content
		default:
			log.Warn().Str("name", env.Name).Type("content", env.Content).Msg("contenido no empaquetable; se omite del ZIP")
			continue
		}

		entryName := env.Name + "." + env.Format
		fw, err := zw.Create(entryName)
		if err != nil {
			return nil, fmt.Errorf("zip: crear entrada %s: %w", entryName, err)
		}
		if _, err := fw.Write(payload); err != nil {
			return nil, fmt.Errorf("zip: escribir entrada %s: %w", entryName, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// PackPerInvoice agrupa los sobres de todas las colecciones por nombre,
// empaqueta cada grupo en un ZIP anidado y devuelve un ZIP superior con una
// entrada {name}.zip por grupo.
func PackPerInvoice(log zerolog.Logger, collections ...[]Envelope[[]byte]) ([]byte, error) {
	var order []string
	groups := make(map[string][]Envelope[[]byte])
	for _, collection := range collections {
		for _, env := range collection {
			if env.Name == "" {
				log.Warn().Str("format", env.Format).Msg("sobre sin nombre; se omite del ZIP por factura")
				continue
			}
			if _, ok := groups[env.Name]; !ok {
				order = append(order, env.Name)
			}
			groups[env.Name] = append(groups[env.Name], env)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range order {
		nested, err := Pack(groups[name], log)
		if err != nil {
			return nil, err
		}
		entryName := name + ".zip"
		fw, err := zw.Create(entryName)
		if err != nil {
			return nil, fmt.Errorf("zip: crear entrada %s: %w", entryName, err)
		}
		if _, err := fw.Write(nested); err != nil {
			return nil, fmt.Errorf("zip: escribir entrada %s: %w", entryName, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// AsBinary convierte sobres de texto en sobres binarios, conservando nombre
// y formato.
func AsBinary(envs []Envelope[string]) []Envelope[[]byte] {
	out := make([]Envelope[[]byte], 0, len(envs))
	for _, env := range envs {
		out = append(out, Rewrap(env, []byte(env.Content), env.Format))
	}
	return out
}
