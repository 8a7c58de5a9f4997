package sim

import (
	"adcpoti/core"
)

// Internal bandgap reference in volts
const internalReference = 1.1

// adc models the successive-approximation ADC of the ATmega328P
type adc struct {
	regs    *core.RegisterFile
	profile *Profile
	wave    Waveform

	timer       Timer
	running     bool
	initialized bool // analog front end powered since ADEN was set

	conversions uint64
	dropped     uint64
	lastCode    uint16
}

func newADC(regs *core.RegisterFile, profile *Profile, wave Waveform) *adc {
	a := &adc{regs: regs, profile: profile, wave: wave}
	a.timer.Handler = a.complete
	return a
}

// poll starts a conversion when the ADC is enabled and ADSC has been
// written. Clearing ADEN powers the analog front end down again.
func (a *adc) poll(s *Scheduler, now uint64) {
	ctl := a.regs.ADCSRA
	if !core.ADEN.IsSetIn(ctl) {
		a.initialized = false
		return
	}
	if a.running || !core.ADSC.IsSetIn(ctl) {
		return
	}

	a.running = true
	a.timer.WakeTime = now + uint64(a.conversionCycles(!a.initialized))
	a.initialized = true
	s.Schedule(&a.timer)
}

// conversionCycles uses the prescaler currently in ADCSRA
func (a *adc) conversionCycles(first bool) uint32 {
	cfg := core.SamplerConfig{
		Prescaler: core.Prescaler(a.regs.ADCSRA.Get() & core.PrescalerMask),
	}
	return cfg.ConversionCycles(first)
}

// reference returns the reference voltage selected by REFS1:0
func (a *adc) reference() float64 {
	if core.Reference(a.regs.ADMUX.Get()&0xC0) == core.ReferenceInternal {
		return internalReference
	}
	return a.profile.Input.Reference
}

// complete latches the result of the conversion ending at t.WakeTime
func (a *adc) complete(t *Timer) uint8 {
	ctl := a.regs.ADCSRA

	volts := a.wave.Volts(a.profile.CyclesToDuration(t.WakeTime))
	code := Quantize(volts, a.reference())
	a.lastCode = code

	if core.ADLAR.IsSetIn(a.regs.ADMUX) {
		a.regs.ADCH.Set(uint8(code >> 2))
	} else {
		a.regs.ADCH.Set(uint8(code >> 8))
	}
	a.conversions++

	// The previous result was never serviced
	if core.ADIF.IsSetIn(ctl) {
		a.dropped++
	} else {
		core.ADIF.SetIn(ctl)
	}

	if core.ADATE.IsSetIn(ctl) && core.ADEN.IsSetIn(ctl) {
		t.WakeTime += uint64(a.conversionCycles(false))
		return SF_RESCHEDULE
	}

	a.running = false
	core.ADSC.ClearIn(ctl)
	return SF_DONE
}
