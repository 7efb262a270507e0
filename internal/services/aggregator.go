package services

import (
	"slices"

	"cap-dashboard/internal/models"
)

// Aggregate summarizes records. Empty input yields zero totals and empty,
// non-nil tables.
func Aggregate(records []models.Record) models.AggregateResult {
	result := models.AggregateResult{
		RecordCount:        len(records),
		RevenueByDate:      []models.DateRevenue{},
		QuantityByCategory: []models.CategoryQuantity{},
		RevenueByPayment:   []models.PaymentRevenue{},
	}

	byDate := make(map[string]int)
	categoryIndex := make(map[string]int)
	paymentIndex := make(map[string]int)

	for _, r := range records {
		result.TotalQuantity += r.Quantity
		result.TotalRevenue += r.Revenue

		key := r.Date.String()
		if _, ok := byDate[key]; !ok {
			result.RevenueByDate = append(result.RevenueByDate, models.DateRevenue{Date: r.Date})
			byDate[key] = len(result.RevenueByDate) - 1
		}
		result.RevenueByDate[byDate[key]].Revenue += r.Revenue

		i, ok := categoryIndex[r.Category]
		if !ok {
			result.QuantityByCategory = append(result.QuantityByCategory, models.CategoryQuantity{Category: r.Category})
			i = len(result.QuantityByCategory) - 1
			categoryIndex[r.Category] = i
		}
		result.QuantityByCategory[i].Quantity += r.Quantity

		j, ok := paymentIndex[r.PaymentMethod]
		if !ok {
			result.RevenueByPayment = append(result.RevenueByPayment, models.PaymentRevenue{PaymentMethod: r.PaymentMethod})
			j = len(result.RevenueByPayment) - 1
			paymentIndex[r.PaymentMethod] = j
		}
		result.RevenueByPayment[j].Revenue += r.Revenue
	}

	result.AverageUnitValue = AverageUnitValue(result.TotalRevenue, result.TotalQuantity)
	result.DistinctCategories = len(result.QuantityByCategory)

	slices.SortFunc(result.RevenueByDate, func(a, b models.DateRevenue) int {
		return a.Date.Compare(b.Date.Time)
	})
	// Stable so categories with equal quantity keep their first-seen order.
	slices.SortStableFunc(result.QuantityByCategory, func(a, b models.CategoryQuantity) int {
		return b.Quantity - a.Quantity
	})

	if len(records) > 0 {
		min, max, _ := Bounds(records)
		result.Period = models.Period{Start: min, End: max}
	}
	return result
}

// AverageUnitValue is revenue per unit sold, or 0 when nothing was sold.
func AverageUnitValue(revenue, quantity int) float64 {
	if quantity == 0 {
		return 0
	}
	return float64(revenue) / float64(quantity)
}

// TopCategory returns the best-selling category of an aggregate, if any.
func TopCategory(result models.AggregateResult) (models.CategoryQuantity, bool) {
	if len(result.QuantityByCategory) == 0 {
		return models.CategoryQuantity{}, false
	}
	return result.QuantityByCategory[0], true
}

// PaymentShare returns each payment method's fraction of total revenue.
// An empty aggregate yields an empty map.
func PaymentShare(result models.AggregateResult) map[string]float64 {
	shares := make(map[string]float64, len(result.RevenueByPayment))
	if result.TotalRevenue == 0 {
		return shares
	}
	for _, p := range result.RevenueByPayment {
		shares[p.PaymentMethod] = float64(p.Revenue) / float64(result.TotalRevenue)
	}
	return shares
}
