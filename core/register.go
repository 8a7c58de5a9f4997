package core

// Register8 is an 8-bit memory-mapped I/O register.
// TinyGo's *volatile.Register8 satisfies it directly, so targets can hand
// device registers to core without wrapping them.
type Register8 interface {
	Get() uint8
	Set(value uint8)
}

// Bit is a single-bit mask inside a Register8.
// All mutations are read-modify-write and leave every other bit untouched.
type Bit uint8

// SetIn sets the bit (bitwise OR).
func (b Bit) SetIn(r Register8) {
	r.Set(r.Get() | uint8(b))
}

// ClearIn clears the bit (bitwise AND with the complement).
func (b Bit) ClearIn(r Register8) {
	r.Set(r.Get() &^ uint8(b))
}

// ToggleIn flips the bit (exclusive OR).
func (b Bit) ToggleIn(r Register8) {
	r.Set(r.Get() ^ uint8(b))
}

// IsSetIn reports whether the bit is set.
func (b Bit) IsSetIn(r Register8) bool {
	return r.Get()&uint8(b) != 0
}

// MemRegister8 is a plain memory-backed register.
// Used by host builds (tests, simulator) in place of device registers.
type MemRegister8 struct {
	value uint8
}

// Get returns the current value
func (r *MemRegister8) Get() uint8 {
	return r.value
}

// Set stores a new value
func (r *MemRegister8) Set(value uint8) {
	r.value = value
}
