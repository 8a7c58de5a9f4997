//go:build avr

// Firmware for ATmega328P boards (Arduino Uno/Nano).
//
// A potentiometer wiper on ADC0 switches the LED on PB1 (pin 9) on when the
// wiper is at or above half of AVcc. A second LED on PB0 (pin 8) flickers
// faintly while the ADC interrupt is running.
//
// Build and flash:
//
//	tinygo build -target=arduino -o poti.hex ./targets/atmega328p
//	go run ./host/cmd/poti-flash -device /dev/ttyACM0 poti.hex
package main

import (
	"adcpoti/core"
	"device/avr"
	"runtime/interrupt"
)

func main() {
	core.SetRegisters(&core.RegisterFile{
		ADMUX:  avr.ADMUX,
		ADCSRA: avr.ADCSRA,
		ADCH:   avr.ADCH,
		DDRB:   avr.DDRB,
		PORTB:  avr.PORTB,
		SREG:   avr.SREG,
	})

	// Bind the handler before Boot enables the interrupt.
	interrupt.New(avr.IRQ_ADC, handleADC)

	core.Boot()

	// The idle loop clears the debug LED continuously. Racing the
	// interrupt's toggle makes that LED glow dimly while conversions run.
	core.Run()
}

// handleADC runs on every completed conversion
func handleADC(interrupt.Interrupt) {
	core.HandleConversion()
}
