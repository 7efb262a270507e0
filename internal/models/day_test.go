package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}
	if !d.Equal(NewDay(2025, time.January, 31)) {
		t.Errorf("ParseDay() = %v, want 2025-01-31", d)
	}

	for _, bad := range []string{"", "2025-13-01", "31/01/2025", "2025-01-31T10:00:00Z"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("ParseDay(%q) should fail", bad)
		}
	}
}

func TestDayOf_DropsClock(t *testing.T) {
	got := DayOf(time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC))
	if got.String() != "2025-03-09" {
		t.Errorf("DayOf() = %s, want 2025-03-09", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("DayOf() kept clock: %v", got.Time)
	}
}

func TestDay_JSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Date  Day `json:"date"`
		Empty Day `json:"empty"`
	}{Date: NewDay(2025, time.August, 25)})
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"date":"2025-08-25","empty":null}` {
		t.Errorf("json = %s", payload)
	}

	var decoded struct {
		Date Day `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2025-02-01"}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Date.String() != "2025-02-01" {
		t.Errorf("decoded = %s", decoded.Date)
	}

	if err := json.Unmarshal([]byte(`{"date":"yesterday"}`), &decoded); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseFrequentFilter(t *testing.T) {
	tests := []struct {
		in   string
		want FrequentFilter
		ok   bool
	}{
		{"", FrequentAny, true},
		{"any", FrequentAny, true},
		{"YES", FrequentYes, true},
		{" no ", FrequentNo, true},
		{"sometimes", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFrequentFilter(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFrequentFilter(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNewRecord_DerivesRevenue(t *testing.T) {
	r := NewRecord(NewDay(2025, 1, 1), "Trucker", 7, 2, "Pix", true)
	if r.Revenue != 14 {
		t.Errorf("Revenue = %d, want 14", r.Revenue)
	}
}
