//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"math"
	"time"

	"github.com/itohio/thermomon/pkg/divider"
	"github.com/itohio/thermomon/pkg/monitor"
	"github.com/itohio/thermomon/pkg/thermistor"
)

var (
	uart = machine.UART0
)

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	machine.InitADC()
	PIN_SENSOR.Configure(machine.PinConfig{Mode: machine.PinInput})

	adc := machine.ADC{Pin: PIN_SENSOR}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	sensor := &divider.Sensor{
		ADC:        adc,
		Reference:  divider.FixedReference(ADC_REFERENCE_MV / 1000.0),
		Divider:    divider.Divider{Series: SERIES_RESISTOR, Bits: ADC_CODE_BITS},
		Oversample: OVERSAMPLE,
	}

	// A bad compiled-in table panics here, before anything is displayed.
	table := thermistor.MustLookup(CALIBRATION_TABLE)

	time.Sleep(INIT_DELAY_MS * time.Millisecond)

	mon := initMonitor(sensor, table)

	for {
		code := adc.Get()

		reading, err := mon.Poll()
		if err != nil {
			println("sensor unavailable:", err.Error())
			reading.Resistance = math.NaN()
			reading.Temperature = math.NaN()
		}

		outputSample(code, reading)

		time.Sleep(LOOP_DELAY_MS * time.Millisecond)
	}
}

// initMonitor retries until the sensor produces its first readings.
func initMonitor(sensor monitor.Sensor, table *thermistor.Table) *monitor.Monitor {
	for {
		mon, err := monitor.New(sensor, table, NUM_SAMPLES)
		if err == nil {
			return mon
		}
		println("monitor init failed:", err.Error())
		time.Sleep(RETRY_DELAY_MS * time.Millisecond)
	}
}

// outputSample prints one data collection line:
// "unix_micros,code,vref_mv,avg_ohms,avg_temp\n"
// Example: "1234567890123,40960,3320,1420.50,104.00\n"
func outputSample(code uint16, reading monitor.Reading) {
	print(time.Now().UnixMicro())
	print(",")
	print(code)
	print(",")
	print(ADC_REFERENCE_MV)
	print(",")
	print(reading.Resistance)
	print(",")
	print(reading.Temperature)
	print("\n")
}
