package models

// Record is one synthesized day of sales for a single category.
type Record struct {
	Date             Day    `json:"date"`
	Category         string `json:"category"`
	Quantity         int    `json:"quantity"`
	UnitPrice        int    `json:"unit_price"`
	Revenue          int    `json:"revenue"`
	PaymentMethod    string `json:"payment_method"`
	FrequentCustomer bool   `json:"frequent_customer"`
}

// NewRecord derives revenue from quantity and unit price.
func NewRecord(date Day, category string, quantity, unitPrice int, payment string, frequent bool) Record {
	return Record{
		Date:             date,
		Category:         category,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Revenue:          quantity * unitPrice,
		PaymentMethod:    payment,
		FrequentCustomer: frequent,
	}
}

// IntRange is a half-open integer interval [Min, Max).
type IntRange struct {
	Min int `json:"min" yaml:"min" toml:"min"`
	Max int `json:"max" yaml:"max" toml:"max"`
}

// DatasetSpec fully determines a synthesized dataset.
type DatasetSpec struct {
	Name           string   `json:"name"`
	Start          Day      `json:"start"`
	End            Day      `json:"end"`
	Categories     []string `json:"categories"`
	PaymentMethods []string `json:"payment_methods"`
	Quantity       IntRange `json:"quantity"`
	UnitPrice      IntRange `json:"unit_price"`
	Seed           uint64   `json:"seed"`
}

// Options are the selectable values of the loaded dataset.
type Options struct {
	Categories     []string `json:"categories"`
	PaymentMethods []string `json:"payment_methods"`
	Start          Day      `json:"start"`
	End            Day      `json:"end"`
}
