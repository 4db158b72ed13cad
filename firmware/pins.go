//go:build tinygo

package main

import (
	"machine"

	"github.com/itohio/thermomon/pkg/thermistor"
)

const (
	// Thermistor configuration
	CALIBRATION_TABLE = thermistor.PQYNPT18
	NUM_SAMPLES       = 120   // Rolling average window for both resistance and temperature
	SERIES_RESISTOR   = 150.0 // Ohms, between the reference rail and the sensor pin
	OVERSAMPLE        = 4     // ADC reads averaged per raw sample

	// ADC configuration
	ADC_REFERENCE_MV = 3320 // Measured rail voltage in millivolts
	ADC_RESOLUTION   = 12   // Hardware resolution in bits
	ADC_CODE_BITS    = 16   // machine.ADC.Get always returns 16-bit codes

	// Timing
	INIT_DELAY_MS  = 2000 // Let the rail settle after power-on
	LOOP_DELAY_MS  = 10
	RETRY_DELAY_MS = 1000 // Between failed monitor initialisations

	// ADC pins
	PIN_SENSOR = machine.A7

	UART_BAUD_RATE = 115200
)
