package param

// logCurve is the exponent range of a logarithmic taper: the top of the
// normalized range maps to 2^logCurve - 1 before rescaling.
const logCurve = 9.0

// Taper maps between normalized [0, 1] control positions and plain values.
type Taper struct {
	Min, Max float64
	Log      bool
}

// Denormalize converts a control position in [0, 1] to a plain value.
func (t Taper) Denormalize(pos float64) float64 {
	pos = clampUnit(pos)
	if t.Log {
		pos = (mathPower2(pos*logCurve) - 1) / (mathPower2(logCurve) - 1)
	}
	return t.Min + pos*(t.Max-t.Min)
}

// Normalize converts a plain value to a control position in [0, 1].
func (t Taper) Normalize(value float64) float64 {
	if t.Max == t.Min {
		return 0
	}
	pos := clampUnit((value - t.Min) / (t.Max - t.Min))
	if t.Log {
		pos = mathLog2(pos*(mathPower2(logCurve)-1)+1) / logCurve
	}
	return clampUnit(pos)
}

// Clamp limits value to the taper's range.
func (t Taper) Clamp(value float64) float64 {
	lo, hi := t.Min, t.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(value, lo), hi)
}

func clampUnit(x float64) float64 {
	return min(max(x, 0), 1)
}
