package utils

import (
	"fmt"
	"time"
)

// RentedDays returns the number of billable days for a planned rental
// window, with both the start and the end date included. Dates are compared
// at day granularity; time-of-day components are ignored.
func RentedDays(plannedStart, plannedEnd time.Time) (int32, error) {
	start := truncateToDate(plannedStart)
	end := truncateToDate(plannedEnd)
	if end.Before(start) {
		return 0, fmt.Errorf("planned end date must be >= planned start date")
	}
	days := int32(end.Sub(start).Hours()/24) + 1 // inclusive
	return days, nil
}

// BaseRentalCostCents is the pre-penalty rental cost.
func BaseRentalCostCents(pricePerDayCents int64, rentedDays int32) int64 {
	return pricePerDayCents * int64(rentedDays)
}

// LateDays returns the number of whole late days between the agreed end
// date and the actual return time, ceiling-rounded: returning 2 days and
// 3 hours late counts as 3 late days. On-time or early returns yield 0.
func LateDays(plannedEnd time.Time, actualReturn time.Time) int32 {
	deadline := truncateToDate(plannedEnd)
	if !actualReturn.After(deadline) {
		return 0
	}
	late := actualReturn.Sub(deadline)
	days := int32(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
