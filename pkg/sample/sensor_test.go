package sample

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itohio/thermomon/pkg/divider"
	"github.com/itohio/thermomon/pkg/monitor"
	"github.com/itohio/thermomon/pkg/thermistor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensor_Resistance(t *testing.T) {
	in := make(chan Sample, 3)
	s := NewSensor(context.Background(), in, time.Second)

	in <- Sample{Ohms: 620, DeviceTemp: 139}
	r, err := s.Resistance()
	require.NoError(t, err)
	assert.Equal(t, 620.0, r)
	assert.Equal(t, 139.0, s.Last().DeviceTemp)

	in <- Sample{Err: divider.ErrOpenCircuit}
	_, err = s.Resistance()
	assert.ErrorIs(t, err, monitor.ErrSensorUnavailable)
	assert.ErrorIs(t, err, divider.ErrOpenCircuit)

	close(in)
	_, err = s.Resistance()
	assert.ErrorIs(t, err, monitor.ErrSensorUnavailable)
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestSensor_Timeout(t *testing.T) {
	s := NewSensor(context.Background(), make(chan Sample), 10*time.Millisecond)

	start := time.Now()
	_, err := s.Resistance()
	assert.ErrorIs(t, err, monitor.ErrSensorUnavailable)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestSensor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSensor(ctx, make(chan Sample), time.Hour)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := s.Resistance()
	assert.ErrorIs(t, err, monitor.ErrSensorUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewSensor_DefaultTimeout(t *testing.T) {
	s := NewSensor(context.Background(), nil, 0)
	assert.Equal(t, DefaultTimeout, s.timeout)
}

func TestSensor_DrivesMonitor(t *testing.T) {
	in := make(chan Sample, 10)
	for _, ohms := range []float64{620, 620, 428, 428} {
		in <- Sample{Ohms: ohms}
	}

	m, err := monitor.New(NewSensor(context.Background(), in, time.Second), thermistor.MustLookup(thermistor.PQYNPT18), 2)
	require.NoError(t, err)

	reading, err := m.Poll()
	require.NoError(t, err)
	assert.InDelta(t, 149, reading.Temperature, 1e-9) // (140 + 158) / 2
	assert.InDelta(t, 524, reading.Resistance, 1e-9)  // (620 + 428) / 2

	in <- Sample{Err: errors.New("open")}
	_, err = m.Poll()
	assert.ErrorIs(t, err, monitor.ErrSensorUnavailable)
}
