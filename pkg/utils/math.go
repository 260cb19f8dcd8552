package utils

// Min returns the minimum of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampNonNegative returns v, or 0 when v is negative.
func ClampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
