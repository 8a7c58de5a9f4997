package sim

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes one simulation run.
type Profile struct {
	CPUFrequency uint32        `yaml:"cpu_frequency"` // Hz
	Duration     time.Duration `yaml:"duration"`      // simulated time
	ISRCycles    uint32        `yaml:"isr_cycles"`    // cost of one ADC interrupt, entry to RETI
	IdleCycles   uint32        `yaml:"idle_cycles"`   // cost of one idle loop iteration
	Input        InputConfig   `yaml:"input"`
}

// InputConfig describes the voltage on the potentiometer wiper.
type InputConfig struct {
	Waveform  string        `yaml:"waveform"`  // constant, ramp, sine or steps
	Reference float64       `yaml:"reference"` // AVcc in volts
	Level     float64       `yaml:"level"`     // constant level in volts
	Min       float64       `yaml:"min"`       // ramp/sine low point in volts
	Max       float64       `yaml:"max"`       // ramp/sine high point in volts
	Period    time.Duration `yaml:"period"`    // ramp/sine period, or hold time per step
	Steps     []float64     `yaml:"steps"`     // step levels in volts
}

// Default returns the profile of an Uno at 16 MHz with a slowly turned pot.
func Default() *Profile {
	return &Profile{
		CPUFrequency: 16000000,
		Duration:     50 * time.Millisecond,
		ISRCycles:    120,
		IdleCycles:   12,
		Input: InputConfig{
			Waveform:  WaveformSine,
			Reference: 5.0,
			Level:     2.5,
			Min:       0.0,
			Max:       5.0,
			Period:    20 * time.Millisecond,
		},
	}
}

// Load loads a profile from a YAML file. If the file doesn't exist or
// fields are missing, default values are used.
func Load(filename string) (*Profile, error) {
	p := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	p.ensureDefaults()

	return p, nil
}

// Save writes the profile as YAML.
func (p *Profile) Save(filename string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// ensureDefaults fills zero fields from Default.
func (p *Profile) ensureDefaults() {
	def := Default()

	if p.CPUFrequency == 0 {
		p.CPUFrequency = def.CPUFrequency
	}
	if p.Duration == 0 {
		p.Duration = def.Duration
	}
	if p.ISRCycles == 0 {
		p.ISRCycles = def.ISRCycles
	}
	if p.IdleCycles == 0 {
		p.IdleCycles = def.IdleCycles
	}

	if p.Input.Waveform == "" {
		p.Input.Waveform = def.Input.Waveform
	}
	if p.Input.Reference == 0 {
		p.Input.Reference = def.Input.Reference
	}
	if p.Input.Period == 0 {
		p.Input.Period = def.Input.Period
	}
	// Min may legitimately be 0 V; only fill Max
	if p.Input.Max == 0 {
		p.Input.Max = p.Input.Reference
	}
}

// Cycles converts a duration to CPU cycles at the profile frequency.
func (p *Profile) Cycles(d time.Duration) uint64 {
	f := uint64(p.CPUFrequency)
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return sec*f + rem*f/uint64(time.Second)
}

// CyclesToDuration converts CPU cycles to time at the profile frequency.
func (p *Profile) CyclesToDuration(cycles uint64) time.Duration {
	f := uint64(p.CPUFrequency)
	sec := cycles / f
	rem := cycles % f
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/f)
}
