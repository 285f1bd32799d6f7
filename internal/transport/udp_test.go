package transport

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestUDPSinkFansOutIdenticalCopies(t *testing.T) {
	l1 := listen(t)
	defer l1.Close()
	l2 := listen(t)
	defer l2.Close()

	sink, err := NewUDPSink([]string{l1.LocalAddr().String(), l2.LocalAddr().String()})
	if err != nil {
		t.Fatalf("NewUDPSink: %v", err)
	}
	defer sink.Close()

	msg := []byte("$GPHDT,090.1,T*3D\r\n")
	if err := sink.Send(msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	for _, l := range []net.PacketConn{l1, l2} {
		got := readOne(t, l)
		if !bytes.Equal(got, msg) {
			t.Errorf("listener %s got %q, want %q", l.LocalAddr(), got, msg)
		}
	}
}

func TestUDPSinkRequiresDestinations(t *testing.T) {
	if _, err := NewUDPSink(nil); err == nil {
		t.Fatal("NewUDPSink(nil) succeeded, want error")
	}
}

func TestUDPSinkRejectsBadEndpoint(t *testing.T) {
	// Missing port: resolution must fail at construction, not at send time.
	if _, err := NewUDPSink([]string{"127.0.0.1"}); err == nil {
		t.Fatal("NewUDPSink with port-less endpoint succeeded, want error")
	}
}

func listen(t *testing.T) net.PacketConn {
	t.Helper()
	l, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	return l
}

func readOne(t *testing.T, l net.PacketConn) []byte {
	t.Helper()
	if err := l.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	buf := make([]byte, 64)
	n, _, err := l.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom on %s: %v", l.LocalAddr(), err)
	}
	return buf[:n]
}
