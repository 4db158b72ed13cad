package monitor

import (
	"errors"
	"fmt"
	"math"

	"github.com/itohio/thermomon/pkg/average"
	"github.com/itohio/thermomon/pkg/thermistor"
)

// ErrSensorUnavailable is returned (wrapped) whenever the sensor cannot
// produce a usable reading.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// DefaultWindow matches the 120-sample window of the reference hardware.
const DefaultWindow = 120

// Sensor produces raw thermistor resistance readings in ohms.
// Resistance is expected to block for no longer than one hardware read.
type Sensor interface {
	Resistance() (float64, error)
}

// SensorFunc adapts a plain function to Sensor.
type SensorFunc func() (float64, error)

func (f SensorFunc) Resistance() (float64, error) { return f() }

// Reading is one smoothed resistance/temperature pair.
type Reading struct {
	Resistance  float64         // Ohms
	Temperature float64         // In Unit
	Unit        thermistor.Unit // Unit of the calibration table
}

// Monitor smooths thermistor resistance and temperature in two independent
// rolling windows. It owns both windows and must be driven from a single
// goroutine.
type Monitor struct {
	sensor Sensor
	table  *thermistor.Table

	resistance  *average.Rolling[float64]
	temperature *average.Rolling[float64]
}

// New seeds both windows from the sensor: one draw for resistance and a
// second, separate draw converted to temperature. Every slot of each window
// starts at that first value.
func New(sensor Sensor, table *thermistor.Table, window int) (*Monitor, error) {
	if sensor == nil {
		return nil, fmt.Errorf("monitor: nil sensor")
	}
	if table == nil {
		return nil, fmt.Errorf("monitor: nil calibration table")
	}
	if window <= 0 {
		return nil, fmt.Errorf("monitor: %w: %d", average.ErrInvalidSize, window)
	}

	m := &Monitor{
		sensor: sensor,
		table:  table,
	}

	temp, err := m.instantTemperature()
	if err != nil {
		return nil, fmt.Errorf("failed to seed temperature: %w", err)
	}
	res, err := m.read()
	if err != nil {
		return nil, fmt.Errorf("failed to seed resistance: %w", err)
	}

	if m.temperature, err = average.New(window, temp); err != nil {
		return nil, fmt.Errorf("temperature window: %w", err)
	}
	if m.resistance, err = average.New(window, res); err != nil {
		return nil, fmt.Errorf("resistance window: %w", err)
	}

	return m, nil
}

// SampleResistance takes a fresh reading and returns the smoothed resistance.
func (m *Monitor) SampleResistance() (float64, error) {
	r, err := m.read()
	if err != nil {
		return 0, err
	}
	return m.resistance.Update(r), nil
}

// SampleTemperature takes a fresh reading, converts it to temperature and
// returns the smoothed temperature. The resistance window is not touched.
func (m *Monitor) SampleTemperature() (float64, error) {
	t, err := m.instantTemperature()
	if err != nil {
		return 0, err
	}
	return m.temperature.Update(t), nil
}

// Poll runs one control-loop tick: temperature first, then resistance, each
// from its own raw reading. On error the caller must treat the display as stale.
func (m *Monitor) Poll() (Reading, error) {
	temp, err := m.SampleTemperature()
	if err != nil {
		return Reading{}, err
	}
	res, err := m.SampleResistance()
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Resistance:  res,
		Temperature: temp,
		Unit:        m.table.Unit(),
	}, nil
}

// Window returns the number of samples each average spans.
func (m *Monitor) Window() int { return m.resistance.Len() }

// Table returns the calibration table used for conversion.
func (m *Monitor) Table() *thermistor.Table { return m.table }

func (m *Monitor) instantTemperature() (float64, error) {
	r, err := m.read()
	if err != nil {
		return 0, err
	}
	return m.table.Temperature(r), nil
}

func (m *Monitor) read() (float64, error) {
	r, err := m.sensor.Resistance()
	if err != nil {
		if errors.Is(err, ErrSensorUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w", ErrSensorUnavailable, err)
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
		return 0, fmt.Errorf("%w: implausible resistance %v", ErrSensorUnavailable, r)
	}
	return r, nil
}
