package probe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawSample is one line reported by the firmware.
type RawSample struct {
	Timestamp      time.Time
	Code           uint16  // ADC code, normalised to 16 bits
	VRefMillivolts uint16  // Divider reference at the time of the read
	DeviceOhms     float64 // Firmware-side smoothed resistance, NaN when stale
	DeviceTemp     float64 // Firmware-side smoothed temperature, NaN when stale
}

// VRef returns the reference voltage in volts.
func (s RawSample) VRef() float64 {
	return float64(s.VRefMillivolts) / 1000
}

// Stale reports whether the firmware could not produce smoothed values.
func (s RawSample) Stale() bool {
	return math.IsNaN(s.DeviceOhms) || math.IsNaN(s.DeviceTemp)
}

// FormatLine renders a sample in the wire format. It is the inverse of parseLine.
func FormatLine(s RawSample) string {
	return fmt.Sprintf("%d,%d,%d,%s,%s",
		s.Timestamp.UnixMicro(),
		s.Code,
		s.VRefMillivolts,
		strconv.FormatFloat(s.DeviceOhms, 'f', 2, 64),
		strconv.FormatFloat(s.DeviceTemp, 'f', 2, 64),
	)
}

// parseLine parses a line from the firmware into a RawSample.
// Format: unix_micros,code,vref_mv,avg_ohms,avg_temp
// Example: 1234567890123,40960,3320,1420.50,104.00
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 5 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	code, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid code: %w", err)
	}

	vref, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid reference: %w", err)
	}
	if vref == 0 {
		return RawSample{}, fmt.Errorf("reference out of range: 0 mV")
	}

	ohms, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid resistance: %w", err)
	}

	temp, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid temperature: %w", err)
	}

	return RawSample{
		Timestamp:      time.UnixMicro(timestampMicros),
		Code:           uint16(code),
		VRefMillivolts: uint16(vref),
		DeviceOhms:     ohms,
		DeviceTemp:     temp,
	}, nil
}
