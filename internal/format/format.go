// Package format renders money and dates for the storefront locales.
package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtDZD formats an amount in Algerian dinars the fr-DZ way, with a narrow
// space as thousands separator. Example: FmtDZD(12500) => "12 500 DA".
func FmtDZD(amount int64) string {
	return thousandSep(amount) + " DA"
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtDate formats a timestamp in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "ar":
		return t.Format("2006/01/02")
	case "en":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("02/01/2006")
	}
}
