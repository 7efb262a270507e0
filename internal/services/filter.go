package services

import (
	"cap-dashboard/internal/errors"
	"cap-dashboard/internal/models"
)

// Stage narrows a record slice. Stages never modify their input; each one
// returns a fresh slice holding the kept records in their original order.
type Stage func([]models.Record) []models.Record

// Pipeline runs stages left to right.
func Pipeline(stages ...Stage) Stage {
	return func(records []models.Record) []models.Record {
		out := records
		for _, stage := range stages {
			out = stage(out)
		}
		if len(stages) == 0 {
			out = keep(records, func(models.Record) bool { return true })
		}
		return out
	}
}

func ByDateRange(start, end models.Day) Stage {
	return func(records []models.Record) []models.Record {
		return keep(records, func(r models.Record) bool {
			return !r.Date.Before(start) && !r.Date.After(end)
		})
	}
}

// ByCategories keeps records whose category is selected. An empty
// selection keeps nothing.
func ByCategories(selected []string) Stage {
	set := toSet(selected)
	return func(records []models.Record) []models.Record {
		return keep(records, func(r models.Record) bool {
			_, ok := set[r.Category]
			return ok
		})
	}
}

// ByPaymentMethods keeps records paid with a selected method. An empty
// selection keeps nothing.
func ByPaymentMethods(selected []string) Stage {
	set := toSet(selected)
	return func(records []models.Record) []models.Record {
		return keep(records, func(r models.Record) bool {
			_, ok := set[r.PaymentMethod]
			return ok
		})
	}
}

func ByFrequent(f models.FrequentFilter) Stage {
	return func(records []models.Record) []models.Record {
		switch f {
		case models.FrequentYes:
			return keep(records, func(r models.Record) bool { return r.FrequentCustomer })
		case models.FrequentNo:
			return keep(records, func(r models.Record) bool { return !r.FrequentCustomer })
		default:
			return keep(records, func(models.Record) bool { return true })
		}
	}
}

// ValidateCriteria rejects criteria that cannot describe a selection.
// Bounds are never swapped.
func ValidateCriteria(c models.FilterCriteria) error {
	if !c.Start.IsZero() && !c.End.IsZero() && c.Start.After(c.End) {
		return errors.Validation("invalid filter criteria").
			WithDetails("start date %s is after end date %s", c.Start, c.End)
	}
	if _, ok := models.ParseFrequentFilter(string(c.Frequent)); !ok {
		return errors.Validation("invalid filter criteria").
			WithDetails("frequent customer filter must be any, yes or no, got %q", c.Frequent)
	}
	return nil
}

// ClampPeriod fits the requested bounds into the dataset span [min, max].
// A zero bound takes the dataset bound. The result may be empty
// (Start after End) when the request lies outside the span.
func ClampPeriod(c models.FilterCriteria, min, max models.Day) models.Period {
	start, end := c.Start, c.End
	if start.IsZero() || start.Before(min) {
		start = min
	}
	if end.IsZero() || end.After(max) {
		end = max
	}
	return models.Period{Start: start, End: end}
}

// Bounds returns the first and last day present in records.
func Bounds(records []models.Record) (min, max models.Day, ok bool) {
	if len(records) == 0 {
		return models.Day{}, models.Day{}, false
	}
	min, max = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}

// Filter returns the records satisfying every predicate of c, in input
// order, together with the clamped period that was applied.
func Filter(records []models.Record, c models.FilterCriteria) ([]models.Record, models.Period, error) {
	if err := ValidateCriteria(c); err != nil {
		return nil, models.Period{}, err
	}
	frequent, _ := models.ParseFrequentFilter(string(c.Frequent))

	min, max, ok := Bounds(records)
	if !ok {
		return []models.Record{}, models.Period{Start: c.Start, End: c.End}, nil
	}
	period := ClampPeriod(c, min, max)

	filtered := Pipeline(
		ByDateRange(period.Start, period.End),
		ByCategories(c.Categories),
		ByPaymentMethods(c.PaymentMethods),
		ByFrequent(frequent),
	)(records)
	return filtered, period, nil
}

func keep(records []models.Record, pred func(models.Record) bool) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
