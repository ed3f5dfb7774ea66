package utils

// SafeDiv returns num/den, or 0 when den is zero. Metric denominators
// (predicted or gold answer counts) are legitimately zero on small or
// all-no-answer datasets, so division never panics or returns NaN.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// F1 returns the harmonic mean of precision and recall, or 0 when both are zero.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
