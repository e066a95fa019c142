package invoice

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/harmony/internal/model"
)

func finalized() model.Client {
	return model.Client{
		ID:         1718000123456,
		Name:       "Ana Gómez",
		Desc:       "Baño principal",
		Phone:      "+57 300-123 4567",
		Total:      2500000,
		AbonoTotal: model.Float(2500000),
		Status:     model.StatusFinalizado,
		Expenses:   []model.Expense{},
		End:        "15/10/2026",
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "#HG-123456", Number(finalized()))
	assert.Equal(t, "#HG-42", Number(model.Client{ID: 42}))
}

func TestBuild(t *testing.T) {
	issued := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	inv := Build(finalized(), DefaultBusiness, issued)

	assert.Equal(t, "#HG-123456", inv.Number)
	assert.Equal(t, "15 de octubre de 2026", inv.IssuedOn)
	assert.Equal(t, "Instalación y Obra en Baño principal", inv.Concept)
	assert.Equal(t, 0.0, inv.Tax)
	assert.Equal(t, 2500000.0, inv.Total)
	assert.Contains(t, inv.Warranty, "3 meses")

	c := finalized()
	c.Phone = ""
	assert.Equal(t, "No registrado", Build(c, DefaultBusiness, issued).Phone)
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	inv := Build(finalized(), DefaultBusiness, time.Now())
	require.NoError(t, WritePDF(&buf, inv))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestShareMessage(t *testing.T) {
	msg := ShareMessage(finalized())
	assert.True(t, strings.HasPrefix(msg, "🏢 *CERTIFICADO DE OBRA HARMONY GLASS*"))
	assert.Contains(t, msg, "*Ana Gómez*")
	assert.Contains(t, msg, "*Baño principal*")
	assert.Contains(t, msg, "$ 2.500.000")
}

func TestWhatsAppURL(t *testing.T) {
	raw := WhatsAppURL(finalized())
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/573001234567", u.Path)
	assert.Equal(t, ShareMessage(finalized()), u.Query().Get("text"))
}

func TestWhatsAppURLNoPhone(t *testing.T) {
	c := finalized()
	c.Phone = ""
	assert.True(t, strings.HasPrefix(WhatsAppURL(c), "https://wa.me/?text="))
}
