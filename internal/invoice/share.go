package invoice

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/harmony/internal/cli"
	"github.com/theirongolddev/harmony/internal/model"
)

// ShareMessage is the WhatsApp text sent with a finalized project's invoice.
func ShareMessage(c model.Client) string {
	return fmt.Sprintf("🏢 *CERTIFICADO DE OBRA HARMONY GLASS*\n\n"+
		"Estimado cliente *%s*,\n"+
		"Adjuntamos la factura final de su proyecto: *%s*.\n\n"+
		"💰 *Inversión Total:* %s\n"+
		"✅ *Estado:* TOTALMENTE PAGADO (ITBIS Incl.)\n\n"+
		"_Gracias por elegir la calidad de Harmony Glass._",
		c.Name, c.Desc, cli.FormatCOP(c.Total))
}

// WhatsAppURL builds a wa.me link for the client's phone with the share
// message prefilled. Non-digits are stripped from the phone.
func WhatsAppURL(c model.Client) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Phone)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(ShareMessage(c))
}
