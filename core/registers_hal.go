package core

// RegisterFile names every I/O register the firmware touches.
// Targets fill it with device registers; host builds use MemRegister8.
type RegisterFile struct {
	// ADC multiplexer selection (reference, left adjust)
	ADMUX Register8
	// ADC control and status register A
	ADCSRA Register8
	// ADC data register, high byte
	ADCH Register8

	// Port B data direction register
	DDRB Register8
	// Port B data register
	PORTB Register8

	// Status register; bit 7 is the global interrupt enable
	SREG Register8
}

// NewMemRegisterFile returns a register file backed by plain memory,
// with every register at its power-on value of zero.
func NewMemRegisterFile() *RegisterFile {
	return &RegisterFile{
		ADMUX:  &MemRegister8{},
		ADCSRA: &MemRegister8{},
		ADCH:   &MemRegister8{},
		DDRB:   &MemRegister8{},
		PORTB:  &MemRegister8{},
		SREG:   &MemRegister8{},
	}
}

// Global singleton used by core code. Lives for the whole program.
var registers *RegisterFile

// SetRegisters is called by target-specific code to register its registers.
func SetRegisters(r *RegisterFile) {
	registers = r
}

// MustRegisters returns the configured register file or panics if missing.
func MustRegisters() *RegisterFile {
	if registers == nil {
		panic("register file not configured")
	}
	return registers
}
