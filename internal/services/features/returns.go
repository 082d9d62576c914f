package features

// SimpleReturns computes r_t = (p_t - p_{t-1}) / p_{t-1}.
// It returns a slice of length len(prices)-1, or nil if insufficient data.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}
