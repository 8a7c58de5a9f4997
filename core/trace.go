package core

// ConversionEvent captures one pass of the conversion interrupt.
type ConversionEvent struct {
	Sample  Sample
	Primary IndicatorState
	Debug   bool // debug bit right after the toggle
}

// ConversionHook observes conversion events on host builds.
type ConversionHook func(ConversionEvent)

const (
	TraceRingSize = 32 // Keep the last 32 conversions
)
