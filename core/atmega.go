package core

// ATmega328P register bit masks used by the firmware.
const (
	// ADMUX
	REFS0 Bit = 1 << 6 // AVcc with external capacitor at AREF
	ADLAR Bit = 1 << 5 // left adjust result

	// ADCSRA
	ADEN  Bit = 1 << 7 // ADC enable
	ADSC  Bit = 1 << 6 // start conversion
	ADATE Bit = 1 << 5 // auto trigger enable
	ADIF  Bit = 1 << 4 // interrupt flag (set by hardware)
	ADIE  Bit = 1 << 3 // interrupt enable
	ADPS2 Bit = 1 << 2
	ADPS1 Bit = 1 << 1
	ADPS0 Bit = 1 << 0

	// PORTB / DDRB
	PB0 Bit = 1 << 0
	PB1 Bit = 1 << 1

	// SREG
	SREG_I Bit = 1 << 7 // global interrupt enable
)

// PrescalerMask covers the three ADPS bits of ADCSRA.
const PrescalerMask = uint8(ADPS2 | ADPS1 | ADPS0)
