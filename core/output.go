// Output controller for the two indicator LEDs on port B
package core

// Indicator pin assignment
const (
	PrimaryPin = PB1 // LED driven by the potentiometer threshold
	DebugPin   = PB0 // heartbeat LED toggled by the ADC interrupt
)

// Indicators owns the primary and debug bits of port B.
//
// Every operation is an in-place read-modify-write of a single bit and never
// disturbs the other bit. The debug bit is written both from the ADC
// interrupt (ToggleDebug) and from the idle loop (ClearDebugRaw) without any
// locking; the resulting dimming of the debug LED is the intended effect.
type Indicators struct {
	ddr  Register8
	port Register8
}

// NewIndicators creates the controller over the direction and data registers.
func NewIndicators(ddr, port Register8) *Indicators {
	return &Indicators{ddr: ddr, port: port}
}

// Init marks both indicator pins as outputs.
// Must run before the sampler is armed: the interrupt may fire before the
// idle loop starts.
func (ind *Indicators) Init() {
	PrimaryPin.SetIn(ind.ddr)
	DebugPin.SetIn(ind.ddr)
}

// SetPrimary turns the primary indicator on
func (ind *Indicators) SetPrimary() {
	PrimaryPin.SetIn(ind.port)
}

// ClearPrimary turns the primary indicator off
func (ind *Indicators) ClearPrimary() {
	PrimaryPin.ClearIn(ind.port)
}

// ToggleDebug flips the debug indicator. Interrupt context only.
func (ind *Indicators) ToggleDebug() {
	DebugPin.ToggleIn(ind.port)
}

// ClearDebugRaw clears the debug indicator. Idle loop only.
func (ind *Indicators) ClearDebugRaw() {
	DebugPin.ClearIn(ind.port)
}

// Primary reads back the primary indicator state.
func (ind *Indicators) Primary() IndicatorState {
	if PrimaryPin.IsSetIn(ind.port) {
		return On
	}
	return Off
}

// Debug reads back the debug indicator bit.
func (ind *Indicators) Debug() bool {
	return DebugPin.IsSetIn(ind.port)
}
