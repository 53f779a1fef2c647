package teleop

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the byte stream the reader consumes. Read returns 0, nil when no
// bytes arrived within the poll interval.
type Port interface {
	Read(p []byte) (int, error)
	Close() error
}

// openPort is replaced in tests.
var openPort = openSerialPort

func openSerialPort(path string, baud int, poll time.Duration) (Port, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(poll); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	// Drop whatever the device printed before we attached.
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}
	return port, nil
}
