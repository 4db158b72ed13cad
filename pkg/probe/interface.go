package probe

// Device defines the interface for thermistor probes (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	IsConnected() bool
}

var _ Device = (*Serial)(nil)

var _ Device = (*Mock)(nil)
