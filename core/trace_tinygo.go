//go:build tinygo

package core

// The ATmega328P has 2KB of SRAM; conversions are not traced on device.

func SetConversionHook(hook ConversionHook) {}

func recordConversion(sample Sample, primary IndicatorState, debug bool) {}

func TraceEvents() []ConversionEvent { return nil }

func ConversionCount() uint32 { return 0 }

func ClearTrace() {}
