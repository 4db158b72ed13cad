package monitor

import (
	"errors"
	"math"
	"testing"

	"github.com/itohio/thermomon/pkg/average"
	"github.com/itohio/thermomon/pkg/thermistor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays a fixed list of readings and then fails.
type scripted struct {
	values []float64
	errs   map[int]error
	calls  int
}

func (s *scripted) Resistance() (float64, error) {
	i := s.calls
	s.calls++
	if err, ok := s.errs[i]; ok {
		return 0, err
	}
	if i >= len(s.values) {
		return 0, errors.New("out of readings")
	}
	return s.values[i], nil
}

func twoPointTable(t *testing.T) *thermistor.Table {
	t.Helper()
	table, err := thermistor.NewTable("two", thermistor.Fahrenheit, 1, []thermistor.Point{{Resistance: 3200, Temperature: 68}, {Resistance: 2150, Temperature: 86}})
	require.NoError(t, err)
	return table
}

func TestNew_SeedsFromSeparateReadings(t *testing.T) {
	table := twoPointTable(t)
	// First draw seeds temperature, second seeds resistance.
	sensor := &scripted{values: []float64{2150, 3200}}

	m, err := New(sensor, table, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, sensor.calls)
	assert.Equal(t, 4, m.Window())
	assert.Same(t, table, m.Table())

	assert.Equal(t, 86.0, m.temperature.Average())
	assert.Equal(t, 3200.0, m.resistance.Average())
	assert.Equal(t, []float64{86, 86, 86, 86}, m.temperature.Values())
}

func TestNew_Errors(t *testing.T) {
	table := twoPointTable(t)

	_, err := New(nil, table, 4)
	assert.Error(t, err)

	_, err = New(&scripted{values: []float64{1, 1}}, nil, 4)
	assert.Error(t, err)

	sensor := &scripted{values: []float64{1, 1}}
	_, err = New(sensor, table, 0)
	assert.ErrorIs(t, err, average.ErrInvalidSize)
	assert.Equal(t, 0, sensor.calls, "window is validated before reading")

	_, err = New(&scripted{errs: map[int]error{0: errors.New("i2c nack")}}, table, 4)
	assert.ErrorIs(t, err, ErrSensorUnavailable)

	_, err = New(&scripted{values: []float64{2150}, errs: map[int]error{1: errors.New("adc")}}, table, 4)
	assert.ErrorIs(t, err, ErrSensorUnavailable)
}

func TestSampleResistance(t *testing.T) {
	sensor := &scripted{values: []float64{2150, 10, 12, 8, 10, 14}}
	m, err := New(sensor, twoPointTable(t), 4)
	require.NoError(t, err)

	for _, want := range []float64{10.5, 9.5, 9.5, 11.0} {
		got, err := m.SampleResistance()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	// Temperature window untouched.
	assert.Equal(t, 86.0, m.temperature.Average())
}

func TestSampleTemperature_SmoothsInstantTemperature(t *testing.T) {
	sensor := &scripted{values: []float64{3200, 3200, 2150, 2150, 2150, 2150}}
	m, err := New(sensor, twoPointTable(t), 4)
	require.NoError(t, err)

	want := []float64{72.5, 77, 81.5, 86}
	for _, w := range want {
		got, err := m.SampleTemperature()
		require.NoError(t, err)
		assert.InDelta(t, w, got, 1e-9)
	}
	assert.Equal(t, 3200.0, m.resistance.Average())
}

func TestPoll_IndependentDraws(t *testing.T) {
	// Seed: temp from 3200 (68F), resistance 3200.
	// Tick: temperature draw 2150 (86F), resistance draw 2675.
	sensor := &scripted{values: []float64{3200, 3200, 2150, 2675}}
	m, err := New(sensor, twoPointTable(t), 2)
	require.NoError(t, err)

	r, err := m.Poll()
	require.NoError(t, err)
	assert.Equal(t, thermistor.Fahrenheit, r.Unit)
	assert.InDelta(t, 77, r.Temperature, 1e-9)
	assert.InDelta(t, 2937.5, r.Resistance, 1e-9)
	assert.Equal(t, 4, sensor.calls)
}

func TestSample_SensorUnavailable(t *testing.T) {
	hwErr := errors.New("adc timeout")
	sensor := &scripted{
		values: []float64{2150, 2150, 0, 0},
		errs:   map[int]error{2: hwErr, 3: ErrSensorUnavailable},
	}
	m, err := New(sensor, twoPointTable(t), 4)
	require.NoError(t, err)

	_, err = m.SampleTemperature()
	assert.ErrorIs(t, err, ErrSensorUnavailable)
	assert.ErrorIs(t, err, hwErr)

	_, err = m.SampleResistance()
	assert.ErrorIs(t, err, ErrSensorUnavailable)

	_, err = m.Poll()
	assert.ErrorIs(t, err, ErrSensorUnavailable)

	// Failed reads leave the windows alone.
	assert.Equal(t, 2150.0, m.resistance.Average())
	assert.Equal(t, 86.0, m.temperature.Average())
}

func TestSample_ImplausibleReading(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), -5} {
		sensor := SensorFunc(func() (float64, error) { return v, nil })
		_, err := New(sensor, twoPointTable(t), 4)
		assert.ErrorIs(t, err, ErrSensorUnavailable, "v=%v", v)
	}
}

func TestSample_OutOfRangeIsNotAnError(t *testing.T) {
	sensor := SensorFunc(func() (float64, error) { return 4000, nil })
	m, err := New(sensor, twoPointTable(t), 3)
	require.NoError(t, err)

	temp, err := m.SampleTemperature()
	require.NoError(t, err)
	assert.InDelta(t, 68-800*18.0/1050.0, temp, 1e-9)
}
