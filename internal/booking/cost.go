package booking

import "time"

// TotalCostCents computes a reservation's charge: the court's hourly price
// over the exact fractional duration, plus each linked service's flat cost.
// The court share is rounded half up to the nearest cent.
func TotalCostCents(hourlyPriceCents int64, start, end time.Time, serviceCostCents []int64) int64 {
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	total := (hourlyPriceCents*seconds + 1800) / 3600
	for _, cost := range serviceCostCents {
		total += cost
	}
	return total
}
