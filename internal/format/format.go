// Package format renders dashboard numbers for people: grouped integers and
// two-decimal currency amounts.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencySymbol = "R$"

// Integer groups thousands with commas: 12345 -> "12,345".
func Integer(n int) string {
	return groupThousands(decimal.NewFromInt(int64(n)).String())
}

// Amount renders v with two decimals and grouped thousands, no symbol.
func Amount(v decimal.Decimal) string {
	return groupThousands(v.StringFixed(2))
}

// Money renders a float currency value as "R$ 1,234.50".
func Money(v float64) string {
	return CurrencySymbol + " " + Amount(decimal.NewFromFloat(v))
}

func MoneyInt(v int) string {
	return CurrencySymbol + " " + Amount(decimal.NewFromInt(int64(v)))
}

// Percent renders a fraction as "12.5%".
func Percent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
