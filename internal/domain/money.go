package domain

import "fmt"

// FormatPrice renders cents as dollars with two decimals, e.g. 1999 -> "19.99".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
