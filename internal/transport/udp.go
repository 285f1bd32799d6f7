package transport

import (
	"fmt"
	"net"
	"strings"
)

type udpSink struct {
	conns []*net.UDPConn
}

// NewUDPSink dials every destination in endpoints ("host:port"). Every
// destination receives a byte-identical copy of each sentence. Resolution or
// dial failures are returned to the caller, which treats them as fatal at
// startup.
func NewUDPSink(endpoints []string) (Sink, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("udp sink: no destinations configured")
	}

	conns := make([]*net.UDPConn, 0, len(endpoints))
	for _, ep := range endpoints {
		addr, err := net.ResolveUDPAddr("udp", ep)
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("udp sink: resolve %q: %w", ep, err)
		}
		conn, err := net.DialUDP("udp", nil, addr)
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("udp sink: dial %q: %w", ep, err)
		}
		conns = append(conns, conn)
	}
	return &udpSink{conns: conns}, nil
}

// Send writes the sentence to every destination. It keeps going past
// individual failures so one dead listener cannot starve the others.
func (s *udpSink) Send(sentence []byte) error {
	var failed []string
	for _, conn := range s.conns {
		if _, err := conn.Write(sentence); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", conn.RemoteAddr(), err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("udp sink: %s", strings.Join(failed, "; "))
	}
	return nil
}

func (s *udpSink) Close() error {
	closeAll(s.conns)
	return nil
}

func closeAll(conns []*net.UDPConn) {
	for _, c := range conns {
		c.Close()
	}
}
