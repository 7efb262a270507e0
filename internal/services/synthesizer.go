package services

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"cap-dashboard/internal/models"
)

const (
	VariantCaps      = "caps"
	VariantCustomers = "customers"

	DefaultSeed uint64 = 42
)

var (
	defaultStart = models.NewDay(2025, time.January, 1)
	defaultEnd   = models.NewDay(2025, time.August, 25)

	capTypes       = []string{"Snapback", "Trucker", "Dad Hat", "5 Panel", "Flexfit", "Bucket"}
	customerNames  = []string{"Loja Centro", "Street Style", "Surf Shop Norte", "Urban Caps", "Skate Point", "Boné & Cia"}
	paymentMethods = []string{"Credit Card", "Debit Card", "Cash", "Pix"}
)

// Variant returns the built-in dataset spec registered under name.
func Variant(name string) (models.DatasetSpec, error) {
	spec := models.DatasetSpec{
		Name:           strings.ToLower(name),
		Start:          defaultStart,
		End:            defaultEnd,
		PaymentMethods: append([]string(nil), paymentMethods...),
		UnitPrice:      models.IntRange{Min: 1, Max: 3},
		Seed:           DefaultSeed,
	}

	switch spec.Name {
	case VariantCaps:
		spec.Categories = append([]string(nil), capTypes...)
		spec.Quantity = models.IntRange{Min: 5, Max: 20}
	case VariantCustomers:
		spec.Categories = append([]string(nil), customerNames...)
		spec.Quantity = models.IntRange{Min: 15, Max: 200}
	default:
		return models.DatasetSpec{}, fmt.Errorf("unknown dataset variant %q", name)
	}
	return spec, nil
}

// NewRand returns the deterministic generator used for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Synthesize builds one record per (day, category) pair from spec.Start to
// spec.End inclusive, drawing every value from rng. The same rng state and
// spec always yield the same records.
func Synthesize(spec models.DatasetSpec, rng *rand.Rand) []models.Record {
	if spec.End.Before(spec.Start) || len(spec.Categories) == 0 {
		return []models.Record{}
	}

	days := int(spec.End.Sub(spec.Start.Time).Hours()/24) + 1
	records := make([]models.Record, 0, days*len(spec.Categories))

	for day := spec.Start; !day.After(spec.End); day = day.AddDays(1) {
		for _, category := range spec.Categories {
			quantity := sample(rng, spec.Quantity)
			unitPrice := sample(rng, spec.UnitPrice)
			payment := ""
			if len(spec.PaymentMethods) > 0 {
				payment = spec.PaymentMethods[rng.IntN(len(spec.PaymentMethods))]
			}
			frequent := rng.IntN(2) == 1

			records = append(records, models.NewRecord(day, category, quantity, unitPrice, payment, frequent))
		}
	}
	return records
}

// sample draws uniformly from the half-open range r. A degenerate range
// yields r.Min.
func sample(rng *rand.Rand, r models.IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.IntN(r.Max-r.Min)
}
