// ADC sampler: free-running conversion with a completion interrupt
package core

// Reference is the ADMUX reference selection (REFS1:0).
type Reference uint8

const (
	ReferenceAREF     Reference = 0                   // external AREF pin
	ReferenceAVcc     Reference = Reference(REFS0)    // AVcc with external capacitor at AREF
	ReferenceInternal Reference = Reference(0x3 << 6) // internal 1.1V
)

// Prescaler is the ADPS2:0 bit pattern of ADCSRA.
type Prescaler uint8

const (
	PrescalerDiv2   Prescaler = 0x1
	PrescalerDiv4   Prescaler = 0x2
	PrescalerDiv8   Prescaler = 0x3
	PrescalerDiv16  Prescaler = 0x4
	PrescalerDiv32  Prescaler = 0x5
	PrescalerDiv64  Prescaler = 0x6
	PrescalerDiv128 Prescaler = Prescaler(ADPS2 | ADPS1 | ADPS0)
)

// Divisor returns the system clock division factor for the prescaler.
// Both 000 and 001 divide by 2.
func (p Prescaler) Divisor() uint32 {
	bits := uint8(p) & PrescalerMask
	if bits == 0 {
		return 2
	}
	return 1 << bits
}

// ADC timing in ADC clock cycles
const (
	FirstConversionClocks  = 25 // first conversion after ADEN initializes the analog circuitry
	NormalConversionClocks = 13
)

// SamplerConfig is the compile-time ADC setup.
type SamplerConfig struct {
	Reference   Reference
	LeftAdjust  bool
	Prescaler   Prescaler
	AutoTrigger bool // free running when ADTS is left at its reset value
}

// DefaultSamplerConfig returns the firmware's ADC setup: AVcc reference,
// left-adjusted result, clock/128 and free-running auto trigger.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Reference:   ReferenceAVcc,
		LeftAdjust:  true,
		Prescaler:   PrescalerDiv128,
		AutoTrigger: true,
	}
}

// ConversionCycles returns how many CPU cycles one conversion takes.
func (c SamplerConfig) ConversionCycles(first bool) uint32 {
	clocks := uint32(NormalConversionClocks)
	if first {
		clocks = FirstConversionClocks
	}
	return clocks * c.Prescaler.Divisor()
}

// Sampler owns the ADC registers.
type Sampler struct {
	regs *RegisterFile
	cfg  SamplerConfig
}

// NewSampler creates a sampler over the given registers. Nothing is written
// until Configure is called.
func NewSampler(regs *RegisterFile, cfg SamplerConfig) *Sampler {
	return &Sampler{regs: regs, cfg: cfg}
}

// Config returns the sampler configuration
func (s *Sampler) Config() SamplerConfig {
	return s.cfg
}

// Configure arms the ADC. Runs once at startup.
//
// Global interrupts are masked while the ADC is set up and enabled as the
// very last step, so the completion interrupt cannot fire mid-setup.
// After this returns the ADC re-triggers itself forever.
func (s *Sampler) Configure() {
	r := s.regs

	SREG_I.ClearIn(r.SREG)

	r.ADMUX.Set(uint8(s.cfg.Reference))
	if s.cfg.LeftAdjust {
		ADLAR.SetIn(r.ADMUX)
	}

	r.ADCSRA.Set(uint8(s.cfg.Prescaler) & PrescalerMask)
	if s.cfg.AutoTrigger {
		ADATE.SetIn(r.ADCSRA)
	}
	ADIE.SetIn(r.ADCSRA)
	ADEN.SetIn(r.ADCSRA)

	// The first conversion is started by hand; auto trigger takes over after it.
	ADSC.SetIn(r.ADCSRA)

	SREG_I.SetIn(r.SREG)
}

// Sample returns the latest conversion result. With a left-adjusted result
// ADCH holds the 8 most significant bits of the 10-bit value.
func (s *Sampler) Sample() Sample {
	return Sample(s.regs.ADCH.Get())
}
