package core

import "testing"

func TestSamplerConfigureBitExact(t *testing.T) {
	regs := NewMemRegisterFile()
	NewSampler(regs, DefaultSamplerConfig()).Configure()

	if regs.ADMUX.Get() != 0x60 {
		t.Errorf("Expected ADMUX 0x60 (REFS0|ADLAR), got 0x%02X", regs.ADMUX.Get())
	}
	if regs.ADCSRA.Get() != 0xEF {
		t.Errorf("Expected ADCSRA 0xEF, got 0x%02X", regs.ADCSRA.Get())
	}
	if !SREG_I.IsSetIn(regs.SREG) {
		t.Error("Expected global interrupts enabled after Configure")
	}
}

func TestSamplerConfigureOrder(t *testing.T) {
	regs, log := newLoggedRegisterFile()
	regs.SREG.Set(uint8(SREG_I)) // runtime leaves interrupts on before main
	log.entries = nil

	NewSampler(regs, DefaultSamplerConfig()).Configure()

	for i, e := range log.entries {
		t.Logf("%2d: %-6s = 0x%02X", i, e.reg, e.value)
	}

	if first := log.entries[0]; first.reg != "SREG" || first.value&uint8(SREG_I) != 0 {
		t.Fatalf("Expected interrupts masked first, got %s=0x%02X", first.reg, first.value)
	}

	last := log.entries[len(log.entries)-1]
	if last.reg != "SREG" || last.value&uint8(SREG_I) == 0 {
		t.Fatalf("Expected global interrupt enable as the last write, got %s=0x%02X", last.reg, last.value)
	}

	steps := []struct {
		reg string
		bit Bit
	}{
		{"ADMUX", REFS0},
		{"ADMUX", ADLAR},
		{"ADCSRA", ADPS2 | ADPS1 | ADPS0},
		{"ADCSRA", ADATE},
		{"ADCSRA", ADIE},
		{"ADCSRA", ADEN},
		{"ADCSRA", ADSC},
	}
	prev := 0
	for _, step := range steps {
		idx := log.firstWrite(step.reg, step.bit)
		if idx < 0 {
			t.Fatalf("%s bit 0x%02X never written", step.reg, uint8(step.bit))
		}
		if idx < prev {
			t.Errorf("%s bit 0x%02X written at %d, before previous step at %d", step.reg, uint8(step.bit), idx, prev)
		}
		prev = idx
	}
}

func TestSamplerSample(t *testing.T) {
	regs := NewMemRegisterFile()
	s := NewSampler(regs, DefaultSamplerConfig())

	regs.ADCH.Set(200)
	if s.Sample() != 200 {
		t.Errorf("Expected sample 200, got %d", s.Sample())
	}
}

func TestPrescalerDivisor(t *testing.T) {
	testCases := []struct {
		p        Prescaler
		expected uint32
	}{
		{0, 2},
		{PrescalerDiv2, 2},
		{PrescalerDiv4, 4},
		{PrescalerDiv8, 8},
		{PrescalerDiv16, 16},
		{PrescalerDiv32, 32},
		{PrescalerDiv64, 64},
		{PrescalerDiv128, 128},
	}

	for _, tc := range testCases {
		if got := tc.p.Divisor(); got != tc.expected {
			t.Errorf("Prescaler 0x%X: expected /%d, got /%d", uint8(tc.p), tc.expected, got)
		}
	}
}

func TestConversionCycles(t *testing.T) {
	cfg := DefaultSamplerConfig()

	if got := cfg.ConversionCycles(true); got != 3200 {
		t.Errorf("Expected first conversion 3200 cycles, got %d", got)
	}
	if got := cfg.ConversionCycles(false); got != 1664 {
		t.Errorf("Expected conversion 1664 cycles, got %d", got)
	}
}
