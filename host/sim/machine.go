// Package sim runs the unmodified firmware core against a cycle-level model
// of the ATmega328P ADC, interrupt controller and port B.
//
// The firmware core keeps its state in package globals, so only one Machine
// may run at a time.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"adcpoti/core"
)

// Machine is one simulated board
type Machine struct {
	profile *Profile
	log     zerolog.Logger

	regs  *core.RegisterFile
	sched Scheduler
	adc   *adc
	meter Meter

	cycle      uint64
	interrupts uint64
	idleSteps  uint64
	lastSample core.Sample
}

// New creates a machine for the profile
func New(profile *Profile, log zerolog.Logger) (*Machine, error) {
	if profile.CPUFrequency == 0 {
		return nil, fmt.Errorf("cpu frequency must be set")
	}
	if profile.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if profile.IdleCycles == 0 {
		return nil, fmt.Errorf("idle loop cost must be at least one cycle")
	}

	if profile.Input.Reference <= 0 {
		return nil, fmt.Errorf("%w: %v V", ErrBadReference, profile.Input.Reference)
	}

	wave, err := NewWaveform(profile.Input)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		profile: profile,
		log:     log,
	}
	m.regs = newRegisterFile(m.meter.PortWrite)
	m.adc = newADC(m.regs, profile, wave)
	return m, nil
}

// Registers exposes the simulated I/O space
func (m *Machine) Registers() *core.RegisterFile {
	return m.regs
}

// Run boots the firmware and executes it for the profile duration
func (m *Machine) Run(ctx context.Context) (*Report, error) {
	core.SetRegisters(m.regs)
	core.ClearTrace()
	core.SetConversionHook(m.onConversion)
	defer core.SetConversionHook(nil)

	core.Boot()
	m.log.Debug().
		Str("admux", fmt.Sprintf("0x%02X", m.regs.ADMUX.Get())).
		Str("adcsra", fmt.Sprintf("0x%02X", m.regs.ADCSRA.Get())).
		Msg("firmware booted")

	end := m.profile.Cycles(m.profile.Duration)
	for m.cycle < end {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m.adc.poll(&m.sched, m.cycle)
		m.sched.Dispatch(m.cycle)

		if m.interruptPending() {
			m.serviceInterrupt()
		}
		// At least one foreground instruction runs after RETI
		m.idleStep()
	}

	report := m.report()
	m.log.Info().
		Uint64("conversions", report.Conversions).
		Uint64("interrupts", report.Interrupts).
		Uint64("dropped", report.Dropped).
		Float64("debug_duty", report.DebugDuty).
		Float64("primary_duty", report.PrimaryDuty).
		Msg("simulation finished")
	return report, nil
}

func (m *Machine) interruptPending() bool {
	return core.SREG_I.IsSetIn(m.regs.SREG) &&
		core.ADIE.IsSetIn(m.regs.ADCSRA) &&
		core.ADIF.IsSetIn(m.regs.ADCSRA)
}

// serviceInterrupt vectors to the ADC handler. Hardware clears ADIF and
// the I bit on entry; RETI sets I again.
func (m *Machine) serviceInterrupt() {
	core.ADIF.ClearIn(m.regs.ADCSRA)
	core.SREG_I.ClearIn(m.regs.SREG)

	core.HandleConversion()
	m.interrupts++
	m.advance(uint64(m.profile.ISRCycles))

	core.SREG_I.SetIn(m.regs.SREG)
}

func (m *Machine) idleStep() {
	core.IdleStep()
	m.idleSteps++
	m.advance(uint64(m.profile.IdleCycles))
}

// advance moves the clock, crediting the meter with the pins driven
// during the interval
func (m *Machine) advance(cycles uint64) {
	driven := m.regs.DDRB.Get() & m.regs.PORTB.Get()
	m.meter.Observe(driven, cycles)
	m.cycle += cycles
}

func (m *Machine) onConversion(evt core.ConversionEvent) {
	if evt.Primary != core.Compare(m.lastSample) || m.interrupts == 0 {
		m.log.Debug().
			Uint64("cycle", m.cycle).
			Uint8("sample", uint8(evt.Sample)).
			Stringer("primary", evt.Primary).
			Msg("primary indicator")
	}
	m.lastSample = evt.Sample
}

// Report summarizes a run
type Report struct {
	Cycles           uint64
	Elapsed          time.Duration
	ConversionPeriod time.Duration

	Conversions uint64 // completed by the ADC
	Interrupts  uint64 // handler executions
	Dropped     uint64 // results overwritten before the handler ran
	IdleSteps   uint64

	PrimaryDuty        float64
	PrimaryTransitions uint64
	DebugDuty          float64
	DebugPulses        uint64

	LastSample core.Sample
}

func (m *Machine) report() *Report {
	return &Report{
		Cycles:             m.cycle,
		Elapsed:            m.profile.CyclesToDuration(m.cycle),
		ConversionPeriod:   m.profile.CyclesToDuration(uint64(m.adc.conversionCycles(false))),
		Conversions:        m.adc.conversions,
		Interrupts:         m.interrupts,
		Dropped:            m.adc.dropped,
		IdleSteps:          m.idleSteps,
		PrimaryDuty:        m.meter.PrimaryDuty(),
		PrimaryTransitions: m.meter.primaryTransitions,
		DebugDuty:          m.meter.DebugDuty(),
		DebugPulses:        m.meter.debugPulses,
		LastSample:         m.lastSample,
	}
}
