package notify

import (
	"fmt"
	"strings"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
)

// BuildDigest renders the plain-text availability email for one subscription.
// Matches are expected cheapest-first with Pharmacy preloaded; the output is
// deterministic for a given input so repeated runs produce identical mail.
func BuildDigest(user models.User, drug models.Drug, sub models.UserSubscription, matches []models.Availability, siteBaseURL string) (subject, body string) {
	var b strings.Builder

	subject = fmt.Sprintf("Препарат %s в наличии", drug.TradeName)
	if sub.City != nil {
		subject += fmt.Sprintf(" в г. %s", *sub.City)
	}

	fmt.Fprintf(&b, "Здравствуйте, %s!\n\n", user.FullName())
	fmt.Fprintf(&b, "Препарат %s появился в наличии:\n\n", drug.Label())

	for _, m := range matches {
		pharmacyName := "аптека"
		location := ""
		if m.Pharmacy != nil {
			pharmacyName = m.Pharmacy.Name
			location = fmt.Sprintf("%s, г. %s", m.Pharmacy.Address, m.Pharmacy.City)
		}
		fmt.Fprintf(&b, "- %s\n", pharmacyName)
		if location != "" {
			fmt.Fprintf(&b, "  %s\n", location)
		}
		fmt.Fprintf(&b, "  Цена: %s ₽\n", m.Price.StringFixed(2))
		if m.Quantity > 0 {
			fmt.Fprintf(&b, "  В наличии: %d шт.\n", m.Quantity)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Подробнее: %s/drugs/%s\n\n", strings.TrimRight(siteBaseURL, "/"), drug.ID)
	b.WriteString("Чтобы отписаться от уведомлений, измените настройки подписок в личном кабинете.\n")

	return subject, b.String()
}
