package parking

import "time"

var (
	weekdayBusyHours = []int{8, 9, 12, 13, 17, 18}
	weekendBusyHours = []int{11, 12, 13, 14, 15, 16}
)

// BusyHours returns the hours of the day that typically see heavy arrivals.
// The table is static, not derived from recorded activity.
func BusyHours(day time.Weekday) []int {
	if day == time.Saturday || day == time.Sunday {
		return append([]int(nil), weekendBusyHours...)
	}
	return append([]int(nil), weekdayBusyHours...)
}

func IsBusyHour(t time.Time) bool {
	for _, h := range BusyHours(t.Weekday()) {
		if h == t.Hour() {
			return true
		}
	}
	return false
}
