package sample

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/thermomon/pkg/divider"
	"github.com/itohio/thermomon/pkg/probe"
)

// Sample represents a processed probe sample with physical values.
type Sample struct {
	Timestamp  time.Time
	Volts      float64 // Voltage across the thermistor (V)
	Ohms       float64 // Thermistor resistance (ohm), zero when Err is set
	DeviceOhms float64 // Firmware-side smoothed resistance, NaN when stale
	DeviceTemp float64 // Firmware-side smoothed temperature, NaN when stale
	Err        error   // Why Ohms could not be computed
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan probe.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
// Samples that fail to convert are still forwarded with Err set so consumers
// can report the sensor as unavailable instead of silently skipping it.
func NewConverter(d divider.Divider, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan probe.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				s := Convert(raw, d)
				if s.Err != nil {
					slog.Debug("failed to convert sample", "code", raw.Code, "error", s.Err)
				}

				select {
				case out <- s:
				case <-time.After(time.Second):
					slog.Warn("converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Convert converts a RawSample to Sample using the divider description.
func Convert(raw probe.RawSample, d divider.Divider) Sample {
	vref := float32(raw.VRef())

	s := Sample{
		Timestamp:  raw.Timestamp,
		Volts:      float64(d.Volts(raw.Code, vref)),
		DeviceOhms: raw.DeviceOhms,
		DeviceTemp: raw.DeviceTemp,
	}

	ohms, err := d.Resistance(raw.Code, vref)
	if err != nil {
		s.Err = fmt.Errorf("code %d: %w", raw.Code, err)
		return s
	}
	s.Ohms = float64(ohms)

	return s
}
