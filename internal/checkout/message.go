package checkout

import (
	"fmt"
	"strings"

	"ateliernour.dz/shop/internal/format"
)

// OrderSummary carries the fields rendered into the Instagram DM message.
type OrderSummary struct {
	Customer    Form
	ProductName string
	Quantity    int
	Supplements []string
	Total       int64
}

// DMMessage builds the plain-text order summary the customer copies into
// the Instagram conversation to finalize payment.
func DMMessage(s OrderSummary) string {
	c := s.Customer.Normalized()
	lines := []string{
		"📦 Nouvelle commande",
		fmt.Sprintf("👤 Nom : %s %s", c.FirstName, c.LastName),
		fmt.Sprintf("📞 Téléphone : %s", c.Phone),
		fmt.Sprintf("📍 Wilaya : %s", c.Wilaya),
		fmt.Sprintf("🏘️ Commune : %s", c.Commune),
	}
	if c.Instagram != "" {
		lines = append(lines, fmt.Sprintf("📸 Instagram : @%s", c.Instagram))
	}
	if s.ProductName != "" {
		lines = append(lines, fmt.Sprintf("🌸 Produit : %s", s.ProductName))
	}
	if s.Quantity > 0 {
		lines = append(lines, fmt.Sprintf("🔢 Quantité : %d", s.Quantity))
	}
	if len(s.Supplements) > 0 {
		lines = append(lines, fmt.Sprintf("✨ Suppléments : %s", strings.Join(s.Supplements, ", ")))
	}
	if s.Total > 0 {
		lines = append(lines, fmt.Sprintf("💰 Total : %s", format.FmtDZD(s.Total)))
	}
	return strings.Join(lines, "\n")
}
