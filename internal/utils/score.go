package utils

// RebuyPercent returns the share of rebuy votes in percent.
// With no votes at all the product sits at the neutral 50.
func RebuyPercent(rebuy, not int64) float64 {
	total := rebuy + not
	if total <= 0 {
		return 50
	}
	return float64(rebuy) / float64(total) * 100
}
