package sentence

import (
	"math"
	"strings"
	"testing"

	nmea "github.com/adrianmo/go-nmea"
)

func TestChecksumIsByteXOR(t *testing.T) {
	payload := "GPHDT,123.4,T"

	var want byte
	for _, b := range []byte(payload) {
		want ^= b
	}
	if want != 0x31 {
		t.Fatalf("reference XOR of %q = 0x%02X, expected 0x31", payload, want)
	}
	if got := Checksum(payload); got != want {
		t.Errorf("Checksum(%q) = 0x%02X, want 0x%02X", payload, got, want)
	}
}

func TestEncodeHDT(t *testing.T) {
	cases := []struct {
		talker  string
		heading float64
		want    string
	}{
		{"GP", 90.1, "$GPHDT,090.1,T*3D\r\n"},
		{"GP", 7.0, "$GPHDT,007.0,T*32\r\n"},
		{"GP", 123.4, "$GPHDT,123.4,T*31\r\n"},
		{"GP", 0.0, "$GPHDT,000.0,T*35\r\n"},
		// Same heading, different talker: the checksum must follow.
		{"HE", 90.1, "$HEHDT,090.1,T*27\r\n"},
	}
	for _, c := range cases {
		if got := string(EncodeHDT(c.talker, c.heading)); got != c.want {
			t.Errorf("EncodeHDT(%q, %v) = %q, want %q", c.talker, c.heading, got, c.want)
		}
	}
}

// Rounding to one decimal can push a near-360 heading up to 360.0; the
// encoder must wrap it back to 000.0 after rounding, not only before.
func TestEncodeHDTWrapsAfterRounding(t *testing.T) {
	got := string(EncodeHDT("GP", 359.99))
	want := "$GPHDT,000.0,T*35\r\n"
	if got != want {
		t.Errorf("EncodeHDT(GP, 359.99) = %q, want %q", got, want)
	}
}

func TestEncodeHDTParsesBack(t *testing.T) {
	for _, talker := range []string{"GP", "HE", "II"} {
		for _, h := range []float64{0, 7.0, 90.1, 123.4, 359.9} {
			raw := strings.TrimSuffix(string(EncodeHDT(talker, h)), "\r\n")
			s, err := nmea.Parse(raw)
			if err != nil {
				t.Fatalf("nmea.Parse(%q): %v", raw, err)
			}
			hdt, ok := s.(nmea.HDT)
			if !ok {
				t.Fatalf("parsed %q as %T, want nmea.HDT", raw, s)
			}
			if !hdt.True {
				t.Errorf("%q: true-heading flag not set", raw)
			}
			if math.Abs(hdt.Heading-h) > 0.05 {
				t.Errorf("%q: parsed heading %v, want %v", raw, hdt.Heading, h)
			}
			if hdt.Talker != talker {
				t.Errorf("%q: talker %q, want %q", raw, hdt.Talker, talker)
			}
		}
	}
}
