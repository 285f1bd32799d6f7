package app

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/relabs-tech/heading_streamer/internal/heading"
	"github.com/relabs-tech/heading_streamer/internal/transport"
)

type stubReader struct {
	deg float64
	err error
}

func (r stubReader) Next() (float64, error) { return r.deg, r.err }

type memorySink struct {
	sent [][]byte
	err  error
}

func (s *memorySink) Send(sentence []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, append([]byte(nil), sentence...))
	return nil
}

func (s *memorySink) Close() error { return nil }

func TestSendOnceFramesAndFansOut(t *testing.T) {
	a := &memorySink{}
	b := &memorySink{}

	deg, msg, err := sendOnce(stubReader{deg: 90.1}, "GP", []transport.Sink{a, b})
	if err != nil {
		t.Fatalf("sendOnce: %v", err)
	}
	if math.Abs(deg-90.1) > 1e-9 {
		t.Errorf("heading = %v, want 90.1", deg)
	}

	want := []byte("$GPHDT,090.1,T*3D\r\n")
	if !bytes.Equal(msg, want) {
		t.Errorf("sentence = %q, want %q", msg, want)
	}
	for name, sink := range map[string]*memorySink{"a": a, "b": b} {
		if len(sink.sent) != 1 || !bytes.Equal(sink.sent[0], want) {
			t.Errorf("sink %s received %q, want one copy of %q", name, sink.sent, want)
		}
	}
}

func TestSendOnceSkipsTickOnReadError(t *testing.T) {
	sink := &memorySink{}
	_, _, err := sendOnce(stubReader{err: errors.New("no sample")}, "GP", []transport.Sink{sink})
	if err == nil {
		t.Fatal("sendOnce with failing reader succeeded, want error")
	}
	if len(sink.sent) != 0 {
		t.Errorf("sink received %d sentences on a failed tick, want 0", len(sink.sent))
	}
}

// A failing sink must not stop delivery to the remaining sinks.
func TestSendOnceSurvivesSinkFailure(t *testing.T) {
	bad := &memorySink{err: errors.New("destination unreachable")}
	good := &memorySink{}

	_, _, err := sendOnce(stubReader{deg: 7.0}, "GP", []transport.Sink{bad, good})
	if err != nil {
		t.Fatalf("sendOnce: %v", err)
	}
	if len(good.sent) != 1 {
		t.Errorf("healthy sink received %d sentences, want 1", len(good.sent))
	}
}

var _ heading.Reader = stubReader{}
