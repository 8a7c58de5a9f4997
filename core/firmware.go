// Firmware entry points: boot, ADC interrupt body and idle loop
package core

var (
	indicators *Indicators
	sampler    *Sampler
)

// Boot brings the firmware up: pin directions first, then the ADC, with the
// global interrupt enable as the final write. Call once from main.
func Boot() {
	regs := MustRegisters()

	indicators = NewIndicators(regs.DDRB, regs.PORTB)
	sampler = NewSampler(regs, DefaultSamplerConfig())

	indicators.Init()
	sampler.Configure()
}

// HandleConversion is the ADC conversion-complete interrupt body.
// It runs to completion and is never re-entered.
func HandleConversion() {
	// Heartbeat, independent of the sample value
	indicators.ToggleDebug()

	sample := sampler.Sample()
	state := Compare(sample)
	if state == On {
		indicators.SetPrimary()
	} else {
		indicators.ClearPrimary()
	}

	recordConversion(sample, state, indicators.Debug())
}

// IdleStep is one iteration of the foreground loop. It clears the debug bit,
// racing the interrupt's toggle on purpose.
func IdleStep() {
	indicators.ClearDebugRaw()
}

// Run spins the idle loop forever.
func Run() {
	for {
		IdleStep()
	}
}
