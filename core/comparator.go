package core

// Sample is the high byte of a left-adjusted 10-bit conversion.
type Sample uint8

// Threshold splits the 8-bit sample range in half. Samples below it turn the
// primary indicator off, samples at or above it turn it on.
const Threshold Sample = 127

// IndicatorState is the commanded state of an indicator.
type IndicatorState uint8

const (
	Off IndicatorState = 0
	On  IndicatorState = 1
)

func (s IndicatorState) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

// Compare maps a sample onto the primary indicator state.
// There is no hysteresis: a sample hovering at the threshold flips the state
// on successive conversions.
func Compare(s Sample) IndicatorState {
	if s >= Threshold {
		return On
	}
	return Off
}
