//go:build !tinygo

package core

var (
	traceRing      [TraceRingSize]ConversionEvent
	traceRingHead  uint8
	traceCount     uint32
	conversionHook ConversionHook
)

// SetConversionHook installs a callback run after every conversion.
// Pass nil to remove it.
func SetConversionHook(hook ConversionHook) {
	conversionHook = hook
}

// recordConversion captures a conversion in the ring buffer
func recordConversion(sample Sample, primary IndicatorState, debug bool) {
	evt := ConversionEvent{Sample: sample, Primary: primary, Debug: debug}
	traceRing[traceRingHead] = evt
	traceRingHead = (traceRingHead + 1) % TraceRingSize
	traceCount++

	if conversionHook != nil {
		conversionHook(evt)
	}
}

// TraceEvents returns the captured conversions, oldest first.
func TraceEvents() []ConversionEvent {
	n := traceCount
	if n > TraceRingSize {
		n = TraceRingSize
	}
	events := make([]ConversionEvent, 0, n)
	start := (int(traceRingHead) + TraceRingSize - int(n)) % TraceRingSize
	for i := 0; i < int(n); i++ {
		events = append(events, traceRing[(start+i)%TraceRingSize])
	}
	return events
}

// ConversionCount returns how many conversions were handled since the last
// ClearTrace.
func ConversionCount() uint32 {
	return traceCount
}

// ClearTrace clears the trace buffer
func ClearTrace() {
	for i := range traceRing {
		traceRing[i] = ConversionEvent{}
	}
	traceRingHead = 0
	traceCount = 0
}
