package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Waveform names
const (
	WaveformConstant = "constant"
	WaveformRamp     = "ramp"
	WaveformSine     = "sine"
	WaveformSteps    = "steps"
)

var (
	ErrUnknownWaveform = errors.New("unknown waveform")
	ErrNoSteps         = errors.New("steps waveform needs at least one step")
	ErrBadPeriod       = errors.New("waveform period must be positive")
	ErrBadReference    = errors.New("reference voltage must be positive")
)

// Waveform gives the wiper voltage at a point in simulated time.
type Waveform interface {
	Volts(t time.Duration) float64
}

// NewWaveform builds the waveform described by cfg.
func NewWaveform(cfg InputConfig) (Waveform, error) {
	switch cfg.Waveform {
	case WaveformConstant:
		return constantWave{level: cfg.Level}, nil
	case WaveformRamp:
		if err := checkPeriod(cfg); err != nil {
			return nil, err
		}
		return rampWave{min: cfg.Min, max: cfg.Max, period: cfg.Period}, nil
	case WaveformSine:
		if err := checkPeriod(cfg); err != nil {
			return nil, err
		}
		return sineWave{min: cfg.Min, max: cfg.Max, period: cfg.Period}, nil
	case WaveformSteps:
		if err := checkPeriod(cfg); err != nil {
			return nil, err
		}
		if len(cfg.Steps) == 0 {
			return nil, ErrNoSteps
		}
		return stepsWave{steps: cfg.Steps, hold: cfg.Period}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWaveform, cfg.Waveform)
	}
}

// checkPeriod rejects periods that would divide by zero or index backwards
func checkPeriod(cfg InputConfig) error {
	if cfg.Period <= 0 {
		return fmt.Errorf("%w: %s has period %v", ErrBadPeriod, cfg.Waveform, cfg.Period)
	}
	return nil
}

type constantWave struct {
	level float64
}

func (w constantWave) Volts(time.Duration) float64 {
	return w.level
}

// rampWave is a sawtooth from min to max
type rampWave struct {
	min, max float64
	period   time.Duration
}

func (w rampWave) Volts(t time.Duration) float64 {
	phase := float64(t%w.period) / float64(w.period)
	return w.min + (w.max-w.min)*phase
}

// sineWave starts at its midpoint and rises
type sineWave struct {
	min, max float64
	period   time.Duration
}

func (w sineWave) Volts(t time.Duration) float64 {
	phase := float64(t%w.period) / float64(w.period)
	mid := (w.max + w.min) / 2
	amp := (w.max - w.min) / 2
	return mid + amp*math.Sin(2*math.Pi*phase)
}

// stepsWave holds each level for hold, then repeats
type stepsWave struct {
	steps []float64
	hold  time.Duration
}

func (w stepsWave) Volts(t time.Duration) float64 {
	idx := int(t/w.hold) % len(w.steps)
	return w.steps[idx]
}

// Quantize converts a wiper voltage to the 10-bit ADC result,
// ADC = Vin * 1024 / Vref, clamped to 0..1023.
func Quantize(volts, reference float64) uint16 {
	code := math.Floor(volts / reference * 1024)
	if code < 0 {
		return 0
	}
	if code > 1023 {
		return 1023
	}
	return uint16(code)
}
