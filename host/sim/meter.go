package sim

import "adcpoti/core"

// Meter integrates the indicator pins over simulated cycles
type Meter struct {
	total     uint64
	primaryOn uint64
	debugOn   uint64

	debugPulses        uint64
	primaryTransitions uint64
}

// Observe accounts cycles spent with the given driven-high pin mask
func (mt *Meter) Observe(pins uint8, cycles uint64) {
	mt.total += cycles
	if pins&uint8(core.PrimaryPin) != 0 {
		mt.primaryOn += cycles
	}
	if pins&uint8(core.DebugPin) != 0 {
		mt.debugOn += cycles
	}
}

// PortWrite counts edges on every PORTB store
func (mt *Meter) PortWrite(old, value uint8) {
	changed := old ^ value
	if changed&uint8(core.DebugPin) != 0 && value&uint8(core.DebugPin) != 0 {
		mt.debugPulses++
	}
	if changed&uint8(core.PrimaryPin) != 0 {
		mt.primaryTransitions++
	}
}

// PrimaryDuty is the fraction of time the primary LED was lit
func (mt *Meter) PrimaryDuty() float64 {
	return ratio(mt.primaryOn, mt.total)
}

// DebugDuty is the fraction of time the debug LED was lit, i.e. its
// apparent brightness
func (mt *Meter) DebugDuty() float64 {
	return ratio(mt.debugOn, mt.total)
}

func ratio(on, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(on) / float64(total)
}
