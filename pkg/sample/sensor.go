package sample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itohio/thermomon/pkg/monitor"
)

// ErrDisconnected means the sample stream has ended for good.
var ErrDisconnected = errors.New("probe disconnected")

// DefaultTimeout bounds how long Sensor waits for the next sample.
const DefaultTimeout = 2 * time.Second

// Sensor feeds a monitor from a stream of converted samples. Each call to
// Resistance consumes exactly one sample.
type Sensor struct {
	ctx     context.Context
	in      <-chan Sample
	timeout time.Duration
	last    Sample
}

var _ monitor.Sensor = (*Sensor)(nil)

// NewSensor creates a Sensor reading from in. A read blocked on the stream
// returns as soon as ctx is done.
func NewSensor(ctx context.Context, in <-chan Sample, timeout time.Duration) *Sensor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sensor{
		ctx:     ctx,
		in:      in,
		timeout: timeout,
	}
}

// Resistance implements monitor.Sensor. A closed stream, a timeout, a done
// context or a sample that failed conversion are all reported as
// ErrSensorUnavailable; there is no retry.
func (s *Sensor) Resistance() (float64, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case smp, ok := <-s.in:
		if !ok {
			return 0, fmt.Errorf("%w: %w", monitor.ErrSensorUnavailable, ErrDisconnected)
		}
		s.last = smp
		if smp.Err != nil {
			return 0, fmt.Errorf("%w: %w", monitor.ErrSensorUnavailable, smp.Err)
		}
		return smp.Ohms, nil
	case <-timer.C:
		return 0, fmt.Errorf("%w: no sample within %v", monitor.ErrSensorUnavailable, s.timeout)
	case <-s.ctx.Done():
		return 0, fmt.Errorf("%w: %w", monitor.ErrSensorUnavailable, s.ctx.Err())
	}
}

// Last returns the most recently consumed sample.
func (s *Sensor) Last() Sample {
	return s.last
}
