package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dome-marketplace/invoicing-engine/pkg/naming"
)

func TestSanitize(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"factura émitida", "facturaemitida"},
		{`inv/2026\03:final?`, "inv202603final"},
		{"año-2026.xml", "ano2026xml"},
		{"  ", "file"},
		{"...", "file"},
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, naming.Sanitize(c.entrada), c.entrada)
	}
}

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "", naming.FirstNonBlank(nil))
	assert.Equal(t, "inv", naming.FirstNonBlank([]string{"", "  "}))
	assert.Equal(t, "inv-001", naming.FirstNonBlank([]string{"", "inv-001", "otro"}))
}
