package probe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/thermomon/pkg/config"
	"github.com/itohio/thermomon/pkg/divider"
	"github.com/itohio/thermomon/pkg/monitor"
	"github.com/itohio/thermomon/pkg/thermistor"
)

// Mock simulates a thermistor probe slowly sweeping between two temperatures.
type Mock struct {
	cfg     config.MockConfig
	table   *thermistor.Table
	divider divider.Divider
	vrefMV  uint16

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	// Simulation state, owned by the generator goroutine
	rng    *rand.Rand
	start  time.Time
	now    time.Time
	count  int
	device *monitor.Monitor // Firmware-side smoothing
}

// NewMock creates a simulated probe. The table must be invertible.
func NewMock(cfg config.MockConfig, table *thermistor.Table, d divider.Divider, vref float64) (*Mock, error) {
	if !table.Invertible() {
		return nil, fmt.Errorf("mock probe: %w", thermistor.ErrNotInvertible)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("mock probe: sample rate must be positive")
	}
	if cfg.SweepPeriod <= 0 {
		return nil, fmt.Errorf("mock probe: sweep period must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		table:   table,
		divider: d,
		vrefMV:  uint16(math.Round(vref * 1000)),
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		rng:     rand.New(rand.NewPCG(1, 2)),
	}, nil
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.ctx.Err() != nil {
		return fmt.Errorf("probe closed")
	}

	m.connected = true
	m.start = time.Now()

	go m.generateSamples()

	return nil
}

// Close stops the generator and closes the samples channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	m.mu.Unlock()

	<-m.done
	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the probe is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples() {
	defer close(m.done)
	defer close(m.samples)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			select {
			case m.samples <- m.generateSample(now):
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample simulates one firmware line at time now.
func (m *Mock) generateSample(now time.Time) RawSample {
	m.count++
	m.now = now

	sample := RawSample{
		Timestamp:      now,
		VRefMillivolts: m.vrefMV,
		DeviceOhms:     math.NaN(),
		DeviceTemp:     math.NaN(),
	}

	if m.cfg.DropEvery > 0 && m.count%m.cfg.DropEvery == 0 {
		// Disconnected thermistor pulls the pin to the rail.
		sample.Code = m.divider.MaxCode()
		return sample
	}

	code, err := m.readCode()
	if err != nil {
		slog.Error("mock probe cannot simulate resistance", "error", err)
		sample.Code = m.divider.MaxCode()
		return sample
	}
	sample.Code = code

	if reading, err := m.pollDevice(); err == nil {
		sample.DeviceOhms = reading.Resistance
		sample.DeviceTemp = reading.Temperature
	}

	return sample
}

// readCode simulates one noisy ADC read at the current simulated time.
func (m *Mock) readCode() (uint16, error) {
	temp := m.Temperature(m.now.Sub(m.start))
	ohms, err := m.table.Resistance(temp)
	if err != nil {
		return 0, err
	}

	code := float64(m.divider.Code(float32(ohms)))
	code += (m.rng.Float64()*2 - 1) * m.cfg.NoiseLevel
	return uint16(math.Max(0, math.Min(code, float64(m.divider.MaxCode()-1)))), nil
}

// readResistance is the sensor behind the simulated firmware monitor.
func (m *Mock) readResistance() (float64, error) {
	code, err := m.readCode()
	if err != nil {
		return 0, err
	}
	r, err := m.divider.Resistance(code, float32(m.vrefMV)/1000)
	return float64(r), err
}

// pollDevice runs the firmware-side monitor for one loop. Like the firmware,
// initialisation is retried on every loop until it succeeds.
func (m *Mock) pollDevice() (monitor.Reading, error) {
	if m.device == nil {
		mon, err := monitor.New(monitor.SensorFunc(m.readResistance), m.table, monitor.DefaultWindow)
		if err != nil {
			return monitor.Reading{}, err
		}
		m.device = mon
	}
	return m.device.Poll()
}

// Temperature is the simulated probe temperature after elapsed time: a
// triangle wave from MinTemperature up to MaxTemperature and back.
func (m *Mock) Temperature(elapsed time.Duration) float64 {
	phase := math.Mod(elapsed.Seconds()/m.cfg.SweepPeriod.Seconds(), 1)
	tri := 1 - math.Abs(2*phase-1)
	return m.cfg.MinTemperature + tri*(m.cfg.MaxTemperature-m.cfg.MinTemperature)
}
