package sim

import "adcpoti/core"

// watchedRegister is a memory register that reports every write
type watchedRegister struct {
	core.MemRegister8
	onSet func(old, value uint8)
}

// Set stores the value and notifies the watcher
func (r *watchedRegister) Set(value uint8) {
	old := r.MemRegister8.Get()
	r.MemRegister8.Set(value)
	if r.onSet != nil {
		r.onSet(old, value)
	}
}

// newRegisterFile builds the simulated I/O space. Writes to PORTB are
// forwarded to onPortWrite.
func newRegisterFile(onPortWrite func(old, value uint8)) *core.RegisterFile {
	regs := core.NewMemRegisterFile()
	regs.PORTB = &watchedRegister{onSet: onPortWrite}
	return regs
}
