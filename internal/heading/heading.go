package heading

import (
	"math"
)

// Calibration is the fixed correction profile applied to every sample.
// It is built once at startup and never written afterwards, so concurrent
// reads are safe.
type Calibration struct {
	Inverted       bool    // sensor is mounted upside-down
	MountOffsetDeg float64 // rotational mounting correction, degrees
	DeclinationDeg float64 // local magnetic declination, degrees east of true north
}

// Sample is one magnetometer reading resolved into vessel axes.
// Units are arbitrary; only the ratio of the two components matters.
type Sample struct {
	Forward float64
	Lateral float64
}

// MagSource yields one raw dual-axis sample per tick.
type MagSource interface {
	Next() (Sample, error)
}

// YawSource yields one filtered yaw in radians per tick, as produced by an
// upstream sensor-fusion stage (counterclockwise positive).
type YawSource interface {
	NextYaw() (float64, error)
}

// Reader produces one normalized true heading in degrees per tick. The two
// implementations cover the raw magnetometer and fused-yaw input modes and
// share the offset/normalize step below.
type Reader interface {
	Next() (float64, error)
}

// FromMag converts a dual-axis magnetometer sample into a true heading in
// [0, 360). The angle is sign-corrected so that increasing values run
// clockwise when viewed from above. Total over all finite inputs: a zero
// vector yields whatever atan2(0, 0) gives and is treated as sensor noise,
// not an error.
func FromMag(s Sample, cal Calibration) float64 {
	deg := -math.Atan2(-s.Lateral, s.Forward) * 180.0 / math.Pi
	if cal.Inverted {
		deg = -deg
	}
	return Normalize(deg + cal.MountOffsetDeg + cal.DeclinationDeg)
}

// FromFusedYaw converts an upstream filtered yaw (radians, counterclockwise
// positive) into a true heading in [0, 360). The negation matches FromMag's
// clockwise convention; the upstream stage's own sign handling takes the
// place of the axis-inversion flag.
func FromFusedYaw(yawRad float64, cal Calibration) float64 {
	deg := -yawRad * 180.0 / math.Pi
	return Normalize(deg + cal.MountOffsetDeg + cal.DeclinationDeg)
}

// Normalize wraps deg into [0, 360).
func Normalize(deg float64) float64 {
	for deg < 0 {
		deg += 360.0
	}
	for deg >= 360.0 {
		deg -= 360.0
	}
	return deg
}

type magReader struct {
	src MagSource
	cal Calibration
}

// NewMagReader returns a Reader computing headings from raw dual-axis
// magnetometer samples.
func NewMagReader(src MagSource, cal Calibration) Reader {
	return &magReader{src: src, cal: cal}
}

func (r *magReader) Next() (float64, error) {
	s, err := r.src.Next()
	if err != nil {
		return 0, err
	}
	return FromMag(s, r.cal), nil
}

type fusedReader struct {
	src YawSource
	cal Calibration
}

// NewFusedReader returns a Reader computing headings from an upstream fusion
// stage's filtered yaw.
func NewFusedReader(src YawSource, cal Calibration) Reader {
	return &fusedReader{src: src, cal: cal}
}

func (r *fusedReader) Next() (float64, error) {
	yaw, err := r.src.NextYaw()
	if err != nil {
		return 0, err
	}
	return FromFusedYaw(yaw, r.cal), nil
}
