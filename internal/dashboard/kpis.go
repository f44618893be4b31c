package dashboard

// TimeBand buckets an hour of day into the four selling windows used for
// beverage preference analysis.
func TimeBand(hour int) string {
	switch {
	case hour >= 0 && hour < 6:
		return "Dawn"
	case hour >= 6 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 18:
		return "Afternoon"
	default:
		return "Night"
	}
}

// timeBandOrder sorts the bands chronologically in responses.
func timeBandOrder(band string) int {
	switch band {
	case "Dawn":
		return 0
	case "Morning":
		return 1
	case "Afternoon":
		return 2
	case "Night":
		return 3
	default:
		return 4
	}
}

// Growth returns the month-over-month percentage change. A zero previous
// month yields 0 regardless of the current total: there is no meaningful
// baseline to grow from.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// AverageTicket divides the day's revenue by its order count, 0 with no
// orders.
func AverageTicket(total float64, orders int) float64 {
	if orders == 0 {
		return 0
	}
	return total / float64(orders)
}
