package booking

import (
	"testing"
	"time"
)

func TestTotalCostCents(t *testing.T) {
	base := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		hourlyCents  int64
		duration     time.Duration
		serviceCents []int64
		expected     int64
	}{
		{"two hours no services", 100000, 2 * time.Hour, nil, 200000},
		{"two hours with services", 100000, 2 * time.Hour, []int64{50000, 80000}, 330000},
		{"one hour", 500000, time.Hour, nil, 500000},
		{"fractional ninety minutes", 100000, 90 * time.Minute, nil, 150000},
		{"fractional rounds half up", 9999, 90 * time.Minute, nil, 14999},
		{"services only added once regardless of duration", 100000, 4 * time.Hour, []int64{2500}, 402500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalCostCents(tt.hourlyCents, base, base.Add(tt.duration), tt.serviceCents)
			if got != tt.expected {
				t.Errorf("TotalCostCents = %d, want %d", got, tt.expected)
			}
		})
	}
}
