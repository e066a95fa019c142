// Package invoice builds the closing document for finalized projects and
// the message used to share it.
package invoice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/harmony/internal/model"
)

var monthsLongES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Business identifies the issuing company.
type Business struct {
	Name      string
	Tagline   string
	NIT       string
	City      string
	Signatory string
}

// DefaultBusiness is used when the config file leaves the invoice section empty.
var DefaultBusiness = Business{
	Name:      "HARMONY GLASS",
	Tagline:   "Sistemas de Alta Precisión",
	NIT:       "900.XXX.XXX-X",
	City:      "Medellín, Colombia",
	Signatory: "Harmony Glass Quality Team",
}

const (
	detailText = "Suministro e instalación de sistemas de carpintería en aluminio y vidrio de alta seguridad. " +
		"Mano de obra certificada bajo estándares de calidad Harmony Glass."
	warrantyText = "Harmony Glass garantiza todos sus productos por un periodo de 3 meses únicamente contra defectos de fábrica. " +
		"Este documento es el único comprobante legal para cualquier reclamación técnica."
	noPhone = "No registrado"
)

// Invoice is the rendered content of a closing document.
type Invoice struct {
	Business Business
	Number   string
	IssuedOn string
	Client   string
	Location string
	Phone    string
	Concept  string
	Detail   string
	Warranty string
	Subtotal float64
	Tax      float64
	Total    float64
}

// Number is "#HG-" followed by the last six digits of the project id.
func Number(c model.Client) string {
	id := strconv.FormatInt(c.ID, 10)
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return "#HG-" + id
}

// LongDate formats t as "15 de octubre de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), monthsLongES[t.Month()-1], t.Year())
}

// Build assembles the invoice for c issued at issued.
func Build(c model.Client, b Business, issued time.Time) Invoice {
	phone := c.Phone
	if phone == "" {
		phone = noPhone
	}
	return Invoice{
		Business: b,
		Number:   Number(c),
		IssuedOn: LongDate(issued),
		Client:   c.Name,
		Location: c.Desc,
		Phone:    phone,
		Concept:  "Instalación y Obra en " + c.Desc,
		Detail:   detailText,
		Warranty: warrantyText,
		Subtotal: c.Total,
		Tax:      0,
		Total:    c.Total,
	}
}
