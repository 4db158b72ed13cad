package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/thermomon/pkg/config"
	"github.com/itohio/thermomon/pkg/divider"
	"github.com/itohio/thermomon/pkg/monitor"
	"github.com/itohio/thermomon/pkg/probe"
	"github.com/itohio/thermomon/pkg/sample"
	"github.com/itohio/thermomon/pkg/thermistor"
)

// initRetry is the pause between failed monitor initialisations.
const initRetry = 500 * time.Millisecond

func newDivider(cfg *config.Config) divider.Divider {
	return divider.Divider{
		Series: float32(cfg.Divider.SeriesResistor),
		Bits:   uint8(cfg.Divider.ADCBits),
	}
}

// openDevice creates the serial probe or, when useMock is set, a simulated one.
func openDevice(cfg *config.Config, useMock bool) (probe.Device, error) {
	if !useMock {
		return probe.New(cfg.Serial.Port, cfg.Serial.BaudRate, probe.DefaultBufferSize), nil
	}

	table, err := thermistor.Lookup(cfg.Thermistor.Table)
	if err != nil {
		return nil, err
	}
	m, err := probe.NewMock(cfg.Mock, table, newDivider(cfg), cfg.Divider.VRef)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// run connects dev, drives a monitor from its samples and logs a smoothed
// reading every report interval until ctx is done or the probe goes away.
func run(ctx context.Context, log *slog.Logger, cfg *config.Config, dev probe.Device) error {
	table, err := thermistor.Lookup(cfg.Thermistor.Table)
	if err != nil {
		return err
	}

	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer dev.Close()

	convert := sample.NewConverter(newDivider(cfg), probe.DefaultBufferSize)
	sensor := sample.NewSensor(ctx, convert(dev.Samples()), cfg.Monitor.ReadTimeout)

	mon, err := initMonitor(ctx, log, sensor, table, cfg.Thermistor.Window)
	if err != nil || mon == nil {
		return err
	}
	log.Info("monitor ready", "table", table.Name(), "unit", table.Unit(), "window", mon.Window())

	// Reports are taken between polls, so a stalled link delays one by at
	// most two read timeouts.
	report := time.NewTicker(cfg.Monitor.ReportInterval)
	defer report.Stop()

	var (
		reading monitor.Reading
		fresh   bool
		stale   int
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-report.C:
			logReading(log, reading, sensor.Last(), fresh, stale)
			stale = 0
		default:
		}

		r, err := mon.Poll()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, sample.ErrDisconnected) {
			return err
		}
		if err != nil {
			log.Debug("sensor unavailable", "error", err)
			fresh = false
			stale++
			continue
		}
		reading, fresh = r, true
	}
}

// initMonitor retries until the sensor delivers the seed samples. A nil
// monitor with a nil error means ctx ended first.
func initMonitor(ctx context.Context, log *slog.Logger, s monitor.Sensor, table *thermistor.Table, window int) (*monitor.Monitor, error) {
	for {
		mon, err := monitor.New(s, table, window)
		if err == nil {
			return mon, nil
		}
		if !errors.Is(err, monitor.ErrSensorUnavailable) || errors.Is(err, sample.ErrDisconnected) {
			return nil, err
		}
		log.Warn("waiting for sensor", "error", err)

		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(initRetry):
		}
	}
}

func logReading(log *slog.Logger, r monitor.Reading, last sample.Sample, fresh bool, stale int) {
	attrs := []any{
		"ohms", r.Resistance,
		"temperature", r.Temperature,
		"unit", r.Unit,
		"device_ohms", last.DeviceOhms,
		"device_temperature", last.DeviceTemp,
	}
	if !fresh {
		log.Warn("reading stale", append(attrs, "failed_polls", stale)...)
		return
	}
	log.Info("reading", attrs...)
}
