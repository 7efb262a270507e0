package services

import (
	"testing"

	"cap-dashboard/internal/models"
)

func TestAggregate(t *testing.T) {
	result := Aggregate(sampleRecords())

	if result.TotalQuantity != 42 {
		t.Errorf("TotalQuantity = %d, want 42", result.TotalQuantity)
	}
	if result.TotalRevenue != 20+5+7+24+16 {
		t.Errorf("TotalRevenue = %d, want 72", result.TotalRevenue)
	}
	if want := 72.0 / 42.0; result.AverageUnitValue != want {
		t.Errorf("AverageUnitValue = %v, want %v", result.AverageUnitValue, want)
	}
	if result.DistinctCategories != 3 {
		t.Errorf("DistinctCategories = %d, want 3", result.DistinctCategories)
	}
	if result.RecordCount != 5 {
		t.Errorf("RecordCount = %d, want 5", result.RecordCount)
	}
	if result.Period.Start.String() != "2025-01-01" || result.Period.End.String() != "2025-01-04" {
		t.Errorf("Period = %+v", result.Period)
	}

	wantDates := []models.DateRevenue{
		{Date: day("2025-01-01"), Revenue: 25},
		{Date: day("2025-01-02"), Revenue: 7},
		{Date: day("2025-01-03"), Revenue: 24},
		{Date: day("2025-01-04"), Revenue: 16},
	}
	if len(result.RevenueByDate) != len(wantDates) {
		t.Fatalf("RevenueByDate = %+v", result.RevenueByDate)
	}
	for i, w := range wantDates {
		if !result.RevenueByDate[i].Date.Equal(w.Date) || result.RevenueByDate[i].Revenue != w.Revenue {
			t.Errorf("RevenueByDate[%d] = %+v, want %+v", i, result.RevenueByDate[i], w)
		}
	}

	wantCategories := []models.CategoryQuantity{
		{Category: "Snapback", Quantity: 17},
		{Category: "Trucker", Quantity: 13},
		{Category: "Bucket", Quantity: 12},
	}
	for i, w := range wantCategories {
		if result.QuantityByCategory[i] != w {
			t.Errorf("QuantityByCategory[%d] = %+v, want %+v", i, result.QuantityByCategory[i], w)
		}
	}

	wantPayments := []models.PaymentRevenue{
		{PaymentMethod: "Pix", Revenue: 44},
		{PaymentMethod: "Cash", Revenue: 21},
		{PaymentMethod: "Credit Card", Revenue: 7},
	}
	for i, w := range wantPayments {
		if result.RevenueByPayment[i] != w {
			t.Errorf("RevenueByPayment[%d] = %+v, want %+v", i, result.RevenueByPayment[i], w)
		}
	}
}

func TestAggregate_DatesSortedAscending(t *testing.T) {
	records := []models.Record{
		models.NewRecord(day("2025-02-10"), "A", 1, 1, "Pix", false),
		models.NewRecord(day("2025-01-05"), "A", 2, 1, "Pix", false),
		models.NewRecord(day("2025-02-10"), "B", 3, 1, "Pix", false),
	}
	result := Aggregate(records)

	if len(result.RevenueByDate) != 2 {
		t.Fatalf("RevenueByDate = %+v", result.RevenueByDate)
	}
	if result.RevenueByDate[0].Date.String() != "2025-01-05" || result.RevenueByDate[1].Revenue != 4 {
		t.Errorf("RevenueByDate = %+v", result.RevenueByDate)
	}
}

func TestAggregate_CategoryTiesKeepEncounterOrder(t *testing.T) {
	records := []models.Record{
		models.NewRecord(day("2025-01-01"), "Flexfit", 5, 1, "Pix", false),
		models.NewRecord(day("2025-01-01"), "Bucket", 9, 1, "Pix", false),
		models.NewRecord(day("2025-01-01"), "Dad Hat", 5, 1, "Pix", false),
		models.NewRecord(day("2025-01-01"), "5 Panel", 5, 1, "Pix", false),
	}
	result := Aggregate(records)

	want := []string{"Bucket", "Flexfit", "Dad Hat", "5 Panel"}
	for i, w := range want {
		if result.QuantityByCategory[i].Category != w {
			t.Errorf("QuantityByCategory[%d] = %q, want %q", i, result.QuantityByCategory[i].Category, w)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil)

	if result.TotalQuantity != 0 || result.TotalRevenue != 0 || result.AverageUnitValue != 0 ||
		result.DistinctCategories != 0 || result.RecordCount != 0 {
		t.Errorf("scalars not zero: %+v", result)
	}
	if result.RevenueByDate == nil || len(result.RevenueByDate) != 0 {
		t.Errorf("RevenueByDate = %#v, want empty", result.RevenueByDate)
	}
	if result.QuantityByCategory == nil || len(result.QuantityByCategory) != 0 {
		t.Errorf("QuantityByCategory = %#v, want empty", result.QuantityByCategory)
	}
	if result.RevenueByPayment == nil || len(result.RevenueByPayment) != 0 {
		t.Errorf("RevenueByPayment = %#v, want empty", result.RevenueByPayment)
	}
}

func TestAverageUnitValue(t *testing.T) {
	tests := []struct {
		revenue, quantity int
		want              float64
	}{
		{0, 0, 0},
		{10, 0, 0},
		{30, 15, 2},
		{25, 10, 2.5},
	}
	for _, tt := range tests {
		if got := AverageUnitValue(tt.revenue, tt.quantity); got != tt.want {
			t.Errorf("AverageUnitValue(%d, %d) = %v, want %v", tt.revenue, tt.quantity, got, tt.want)
		}
	}
}

func TestAggregate_PartitionsSumToTotals(t *testing.T) {
	for _, name := range []string{VariantCaps, VariantCustomers} {
		t.Run(name, func(t *testing.T) {
			spec, _ := Variant(name)
			records := Synthesize(spec, NewRand(11))

			criteria := models.FilterCriteria{
				Start:          day("2025-04-01"),
				End:            day("2025-06-30"),
				Categories:     spec.Categories[:4],
				PaymentMethods: spec.PaymentMethods[1:],
				Frequent:       models.FrequentNo,
			}
			filtered, _, err := Filter(records, criteria)
			if err != nil {
				t.Fatal(err)
			}
			result := Aggregate(filtered)

			var quantity, paymentRevenue, dateRevenue int
			for _, c := range result.QuantityByCategory {
				quantity += c.Quantity
			}
			for _, p := range result.RevenueByPayment {
				paymentRevenue += p.Revenue
			}
			for _, d := range result.RevenueByDate {
				dateRevenue += d.Revenue
			}

			if quantity != result.TotalQuantity {
				t.Errorf("category quantities sum to %d, total is %d", quantity, result.TotalQuantity)
			}
			if paymentRevenue != result.TotalRevenue {
				t.Errorf("payment revenues sum to %d, total is %d", paymentRevenue, result.TotalRevenue)
			}
			if dateRevenue != result.TotalRevenue {
				t.Errorf("date revenues sum to %d, total is %d", dateRevenue, result.TotalRevenue)
			}
		})
	}
}

func TestAggregate_TwoCategoryScenario(t *testing.T) {
	spec := twoDaySpec()
	records := Synthesize(spec, NewRand(spec.Seed))

	criteria := models.FilterCriteria{
		Categories:     []string{"A"},
		PaymentMethods: spec.PaymentMethods,
		Frequent:       models.FrequentAny,
	}
	filtered, _, err := Filter(records, criteria)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 2 {
		t.Fatalf("len(filtered) = %d, want 2", len(filtered))
	}
	for _, r := range filtered {
		if r.Category != "A" {
			t.Errorf("category %q kept", r.Category)
		}
	}

	result := Aggregate(filtered)
	if len(result.QuantityByCategory) != 1 || result.QuantityByCategory[0].Category != "A" {
		t.Fatalf("QuantityByCategory = %+v, want only A", result.QuantityByCategory)
	}
	if want := filtered[0].Quantity + filtered[1].Quantity; result.QuantityByCategory[0].Quantity != want {
		t.Errorf("A quantity = %d, want %d", result.QuantityByCategory[0].Quantity, want)
	}
}

func TestTopCategoryAndPaymentShare(t *testing.T) {
	result := Aggregate(sampleRecords())

	top, ok := TopCategory(result)
	if !ok || top.Category != "Snapback" {
		t.Errorf("TopCategory() = %+v, %v", top, ok)
	}
	if _, ok := TopCategory(Aggregate(nil)); ok {
		t.Error("TopCategory() on empty aggregate should report false")
	}

	shares := PaymentShare(result)
	var sum float64
	for _, s := range shares {
		sum += s
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("shares sum to %v", sum)
	}
	if len(PaymentShare(Aggregate(nil))) != 0 {
		t.Error("PaymentShare() on empty aggregate should be empty")
	}
}
