package render_test

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dome-marketplace/invoicing-engine/internal/render"
)

func entradasDe(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = content
	}
	return out
}

func TestPack_EntradasNombradas(t *testing.T) {
	envs := []render.Envelope[string]{
		render.NewEnvelope("<Invoice/>", "inv-001", "xml"),
		render.NewEnvelope("<html></html>", "inv-002", "html"),
	}

	data, err := render.Pack(envs, zerolog.Nop())
	require.NoError(t, err)

	entradas := entradasDe(t, data)
	require.Len(t, entradas, 2)
	assert.Equal(t, []byte("<Invoice/>"), entradas["inv-001.xml"])
	assert.Equal(t, []byte("<html></html>"), entradas["inv-002.html"])
}

func TestPack_VacioEsZipValido(t *testing.T) {
	data, err := render.Pack([]render.Envelope[[]byte]{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, entradasDe(t, data))
}

func TestPack_SaltaSobresIncompletos(t *testing.T) {
	envs := []render.Envelope[string]{
		render.NewEnvelope("contenido", "", "xml"),
		render.NewEnvelope("contenido", "inv-001", ""),
		render.NewEnvelope("contenido", "inv-002", "xml"),
	}

	data, err := render.Pack(envs, zerolog.Nop())
	require.NoError(t, err)

	entradas := entradasDe(t, data)
	require.Len(t, entradas, 1)
	assert.Contains(t, entradas, "inv-002.xml")
}

func TestPackPerInvoice_UnZipPorFactura(t *testing.T) {
	xmls := []render.Envelope[[]byte]{
		render.NewEnvelope([]byte("<a/>"), "inv-001", "xml"),
		render.NewEnvelope([]byte("<b/>"), "inv-002", "xml"),
	}
	htmls := []render.Envelope[[]byte]{
		render.NewEnvelope([]byte("<html>a</html>"), "inv-001", "html"),
		render.NewEnvelope([]byte("<html>b</html>"), "inv-002", "html"),
	}

	data, err := render.PackPerInvoice(zerolog.Nop(), xmls, htmls)
	require.NoError(t, err)

	exterior := entradasDe(t, data)
	require.Len(t, exterior, 2)
	require.Contains(t, exterior, "inv-001.zip")
	require.Contains(t, exterior, "inv-002.zip")

	interior := entradasDe(t, exterior["inv-001.zip"])
	require.Len(t, interior, 2)
	assert.Equal(t, []byte("<a/>"), interior["inv-001.xml"])
	assert.Equal(t, []byte("<html>a</html>"), interior["inv-001.html"])
}

func TestAsBinary(t *testing.T) {
	envs := render.AsBinary([]render.Envelope[string]{
		render.NewEnvelope("hola", "inv-001", "xml"),
	})
	require.Len(t, envs, 1)
	assert.Equal(t, []byte("hola"), envs[0].Content)
	assert.Equal(t, "inv-001", envs[0].Name)
	assert.Equal(t, "xml", envs[0].Format)
}
