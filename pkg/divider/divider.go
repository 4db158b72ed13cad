package divider

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var (
	ErrOpenCircuit      = errors.New("thermistor open circuit")
	ErrInvalidReference = errors.New("invalid reference voltage")
)

// Divider describes a thermistor on the low side of a voltage divider with a
// fixed series resistor to the reference rail, read by an ADC.
type Divider struct {
	Series float32 // Series resistor (ohms)
	Bits   uint8   // ADC resolution; codes are divided by 1<<Bits
}

// Volts converts an ADC code to the voltage across the thermistor.
func (d Divider) Volts(code uint16, vref float32) float32 {
	return float32(code) / d.scale() * vref
}

// Ohms solves the divider for the thermistor resistance:
// R = V * Rs / (Vref - V)
func (d Divider) Ohms(volts, vref float32) (float32, error) {
	if vref <= 0 || math32.IsNaN(vref) || math32.IsInf(vref, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidReference, vref)
	}
	if volts >= vref {
		return 0, fmt.Errorf("%w: %.3fV of %.3fV", ErrOpenCircuit, volts, vref)
	}

	r := volts * d.Series / (vref - volts)
	if math32.IsNaN(r) || math32.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: %.3fV of %.3fV", ErrOpenCircuit, volts, vref)
	}
	return math32.Max(r, 0), nil
}

// Resistance converts an ADC code straight to ohms. A code pinned at the top
// of the range means the thermistor is disconnected.
func (d Divider) Resistance(code uint16, vref float32) (float32, error) {
	if code >= d.MaxCode() {
		return 0, fmt.Errorf("%w: code %d at full scale", ErrOpenCircuit, code)
	}
	return d.Ohms(d.Volts(code, vref), vref)
}

// Code is the ADC code a thermistor of the given resistance would produce.
// It does not depend on the reference voltage.
func (d Divider) Code(ohms float32) uint16 {
	if ohms <= 0 {
		return 0
	}
	if math32.IsInf(ohms, 1) {
		return d.MaxCode()
	}
	code := math32.Floor(d.scale()*ohms/(ohms+d.Series) + 0.5)
	return uint16(math32.Min(code, float32(d.MaxCode())))
}

// MaxCode is the highest code the ADC can report. Reading it means the pin
// sits on the reference rail.
func (d Divider) MaxCode() uint16 {
	return uint16(uint32(1)<<d.Bits - 1)
}

func (d Divider) scale() float32 {
	return float32(uint32(1) << d.Bits)
}
