package transport

import (
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

type serialSink struct {
	name string
	port io.ReadWriteCloser
}

// NewSerialSink opens portName for writing sentences to a hardwired NMEA
// listener (RS-422 or a USB adapter).
func NewSerialSink(portName string, baudRate uint) (Sink, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("serial sink: open %s: %w", portName, err)
	}
	return &serialSink{name: portName, port: port}, nil
}

func (s *serialSink) Send(sentence []byte) error {
	if _, err := s.port.Write(sentence); err != nil {
		return fmt.Errorf("serial sink: write %s: %w", s.name, err)
	}
	return nil
}

func (s *serialSink) Close() error {
	return s.port.Close()
}
