package domain

import "fmt"

// FormatRubles renders minor units as "1 234,50 ₽".
func FormatRubles(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var grouped []byte
	for i, r := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, r)
	}
	return fmt.Sprintf("%s%s,%02d ₽", sign, grouped, cents%100)
}
