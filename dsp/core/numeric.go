package core

import "math"

const defaultEpsilon = 1e-12

// MinNormal32 is the smallest positive normal float32. The flanger core
// processes float64 but hosts usually hand it float32 buffers, so values
// below this threshold are treated as denormal.
const MinNormal32 = 0x1p-126

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals snaps values whose magnitude is below MinNormal32 to zero.
func FlushDenormals(x float64) float64 {
	if x > -MinNormal32 && x < MinNormal32 {
		return 0
	}

	return x
}

// ParabolicSine approximates sin(angle) for angle in [-π, π] using a
// parabola refined by one correction step. Maximum error is about 0.001.
func ParabolicSine(angle float64) float64 {
	const (
		b = 4 / math.Pi
		c = -4 / (math.Pi * math.Pi)
		p = 0.225
	)

	y := b*angle + c*angle*math.Abs(angle)

	return p*(y*math.Abs(y)-y) + y
}

// UnipolarToBipolar maps [0, 1] onto [-1, 1].
func UnipolarToBipolar(x float64) float64 {
	return 2*x - 1
}

// BipolarToUnipolar maps [-1, 1] onto [0, 1].
func BipolarToUnipolar(x float64) float64 {
	return 0.5*x + 0.5
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// NextPowerOfTwo returns the smallest power of two that is >= n. Values
// below 1 yield 1.
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
