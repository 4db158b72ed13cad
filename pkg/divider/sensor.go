package divider

import (
	"fmt"

	"github.com/itohio/thermomon/pkg/monitor"
)

// ADC is a single analog input. TinyGo's machine.ADC satisfies it.
type ADC interface {
	Get() uint16
}

// Reference reports the divider supply voltage at the time of a read.
type Reference interface {
	Volts() float32
}

// FixedReference is a reference voltage known at build time.
type FixedReference float32

func (r FixedReference) Volts() float32 { return float32(r) }

// Sensor reads thermistor resistance from an ADC pin.
type Sensor struct {
	ADC        ADC
	Reference  Reference
	Divider    Divider
	Oversample int // Codes averaged per reading; 0 or 1 reads once
}

var _ monitor.Sensor = (*Sensor)(nil)

// Resistance implements monitor.Sensor.
func (s *Sensor) Resistance() (float64, error) {
	n := s.Oversample
	if n <= 0 {
		n = 1
	}

	var sum uint32
	for i := 0; i < n; i++ {
		sum += uint32(s.ADC.Get())
	}
	code := uint16(sum / uint32(n))

	r, err := s.Divider.Resistance(code, s.Reference.Volts())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", monitor.ErrSensorUnavailable, err)
	}
	return float64(r), nil
}
