package models

type DateRevenue struct {
	Date    Day `json:"date"`
	Revenue int `json:"revenue"`
}

type CategoryQuantity struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type PaymentRevenue struct {
	PaymentMethod string `json:"payment_method"`
	Revenue       int    `json:"revenue"`
}

type Period struct {
	Start Day `json:"start"`
	End   Day `json:"end"`
}

// AggregateResult is everything the presentation layer renders for one
// filter selection.
type AggregateResult struct {
	TotalQuantity      int                `json:"total_quantity"`
	TotalRevenue       int                `json:"total_revenue"`
	AverageUnitValue   float64            `json:"average_unit_value"`
	DistinctCategories int                `json:"distinct_categories"`
	RecordCount        int                `json:"record_count"`
	Period             Period             `json:"period"`
	RevenueByDate      []DateRevenue      `json:"revenue_by_date"`
	QuantityByCategory []CategoryQuantity `json:"quantity_by_category"`
	RevenueByPayment   []PaymentRevenue   `json:"revenue_by_payment_method"`
}
