package jalali

// floorDiv divides two int64 values, returning the floor of the
// quotient. Unlike Go's built-in division it rounds toward negative
// infinity: -1/4 is 0, but floorDiv(-1, 4) is -1. The denominator must
// be positive. The (n+1)/d-1 form handles a numerator of
// math.MinInt64 without overflow.
func floorDiv(numerator, denominator int64) int64 {
	if numerator >= 0 {
		return numerator / denominator
	}
	return (numerator+1)/denominator - 1
}

// floorDivInt is floorDiv over plain ints.
func floorDivInt(numerator, denominator int) int {
	if numerator >= 0 {
		return numerator / denominator
	}
	return (numerator+1)/denominator - 1
}

// floorDivRem returns the floor quotient and the always-non-negative
// remainder of numerator/denominator. The denominator must be positive.
func floorDivRem(numerator, denominator int64) (quotient, remainder int64) {
	quotient = floorDiv(numerator, denominator)
	remainder = numerator - quotient*denominator
	return quotient, remainder
}

// floorDivRemInt is floorDivRem over plain ints.
func floorDivRemInt(numerator, denominator int) (quotient, remainder int) {
	quotient = floorDivInt(numerator, denominator)
	remainder = numerator - quotient*denominator
	return quotient, remainder
}

// aggregateStamp combines the pseudo-time-stamps of two fields that
// must both be present for a field group to be usable. If either is
// unset the aggregate is unset, otherwise it is the later of the two.
func aggregateStamp(a, b int) int {
	if a == stampUnset || b == stampUnset {
		return stampUnset
	}
	if a > b {
		return a
	}
	return b
}
