package models

import "strings"

// FrequentFilter is the tri-state frequent-customer selection.
type FrequentFilter string

const (
	FrequentAny FrequentFilter = "any"
	FrequentYes FrequentFilter = "yes"
	FrequentNo  FrequentFilter = "no"
)

// ParseFrequentFilter accepts any/yes/no in any case; the empty string means any.
func ParseFrequentFilter(s string) (FrequentFilter, bool) {
	switch FrequentFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FrequentAny:
		return FrequentAny, true
	case FrequentYes:
		return FrequentYes, true
	case FrequentNo:
		return FrequentNo, true
	default:
		return "", false
	}
}

// FilterCriteria narrows a dataset. Zero Start or End leaves that side at the
// dataset bound. Nil or empty selections match nothing.
type FilterCriteria struct {
	Start          Day            `json:"start"`
	End            Day            `json:"end"`
	Categories     []string       `json:"categories"`
	PaymentMethods []string       `json:"payment_methods"`
	Frequent       FrequentFilter `json:"frequent"`
}
