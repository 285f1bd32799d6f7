// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package heading

import (
	"math"
	"time"
)

type mockMagSource struct {
	start time.Time
}

// NewMockMagSource creates a mock magnetometer source whose field vector
// sweeps a full circle every 30 seconds.
func NewMockMagSource() MagSource {
	return &mockMagSource{start: time.Now()}
}

func (m *mockMagSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()
	theta := math.Mod(elapsed*12, 360) * math.Pi / 180.0

	return Sample{
		Forward: math.Cos(theta),
		Lateral: math.Sin(theta),
	}, nil
}
