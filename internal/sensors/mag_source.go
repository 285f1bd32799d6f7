// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/heading_streamer/internal/config"
	"github.com/relabs-tech/heading_streamer/internal/heading"
)

// axisPick maps one vessel axis onto a signed sensor axis.
type axisPick struct {
	index int // 0 = sensor X, 1 = sensor Y
	sign  float64
}

func parseAxis(value string) (axisPick, error) {
	switch value {
	case "x":
		return axisPick{index: 0, sign: 1}, nil
	case "-x":
		return axisPick{index: 0, sign: -1}, nil
	case "y":
		return axisPick{index: 1, sign: 1}, nil
	case "-y":
		return axisPick{index: 1, sign: -1}, nil
	}
	return axisPick{}, fmt.Errorf("axis must be x, y, -x or -y, got %q", value)
}

type magSource struct {
	bus     i2c.BusCloser
	mag     *i2c.Dev
	adj     [2]float64 // fuse-ROM sensitivity adjustment for X and Y
	forward axisPick
	lateral axisPick
}

// NewMagSource opens the configured I2C bus, brings up the AK8963
// magnetometer behind the MPU-9250 in continuous 16-bit mode, and returns a
// source that resolves each reading into vessel forward/lateral components.
func NewMagSource() (heading.MagSource, error) {
	cfg := config.Get()

	forwardAxis := cfg.MagForwardAxis
	if forwardAxis == "" {
		forwardAxis = "-y"
	}
	lateralAxis := cfg.MagLateralAxis
	if lateralAxis == "" {
		lateralAxis = "-x"
	}
	forward, err := parseAxis(forwardAxis)
	if err != nil {
		return nil, fmt.Errorf("mag: MAG_FORWARD_AXIS: %w", err)
	}
	lateral, err := parseAxis(lateralAxis)
	if err != nil {
		return nil, fmt.Errorf("mag: MAG_LATERAL_AXIS: %w", err)
	}
	if forward.index == lateral.index {
		return nil, fmt.Errorf("mag: forward and lateral axes both map to sensor %s",
			[]string{"X", "Y"}[forward.index])
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("mag: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("mag: i2c open bus %q: %w", cfg.I2CBus, err)
	}

	addr := cfg.MPUI2CAddr
	if addr == 0 {
		addr = 0x68
	}
	mpu := &i2c.Dev{Bus: bus, Addr: addr}

	src := &magSource{
		bus:     bus,
		mag:     &i2c.Dev{Bus: bus, Addr: ak8963Addr},
		forward: forward,
		lateral: lateral,
	}
	if err := src.init(mpu); err != nil {
		bus.Close()
		return nil, err
	}
	return src, nil
}

// init wakes the MPU-9250, enables I2C bypass so the AK8963 is addressable
// directly, loads the fuse-ROM sensitivity adjustments, and switches to
// continuous measurement.
func (s *magSource) init(mpu *i2c.Dev) error {
	id, err := readReg(mpu, regWhoAmI)
	if err != nil {
		return fmt.Errorf("mag: read MPU WHO_AM_I: %w", err)
	}
	if id != whoAmIMPU9250 && id != whoAmIMPU9255 {
		log.Printf("mag: unexpected MPU WHO_AM_I 0x%02X, continuing anyway", id)
	}

	// Wake from sleep and reach the magnetometer directly.
	if err := writeReg(mpu, regPwrMgmt1, 0x00); err != nil {
		return fmt.Errorf("mag: wake MPU: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := writeReg(mpu, regIntPinCfg, bitBypassEn); err != nil {
		return fmt.Errorf("mag: enable bypass: %w", err)
	}
	time.Sleep(10 * time.Millisecond)

	wia, err := readReg(s.mag, akRegWIA)
	if err != nil {
		return fmt.Errorf("mag: read AK8963 WIA: %w", err)
	}
	if wia != akDeviceID {
		return fmt.Errorf("mag: AK8963 WIA = 0x%02X, want 0x%02X", wia, akDeviceID)
	}

	// Sensitivity adjustment lives in fuse ROM; it is only readable in
	// fuse ROM access mode, with a power-down in between mode switches.
	if err := writeReg(s.mag, akRegCNTL1, akModePowerDown); err != nil {
		return fmt.Errorf("mag: power down AK8963: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := writeReg(s.mag, akRegCNTL1, akModeFuseROM); err != nil {
		return fmt.Errorf("mag: enter fuse ROM mode: %w", err)
	}
	time.Sleep(10 * time.Millisecond)

	asa := make([]byte, 3)
	if err := s.mag.Tx([]byte{akRegASAX}, asa); err != nil {
		return fmt.Errorf("mag: read sensitivity adjustment: %w", err)
	}
	for i := 0; i < 2; i++ {
		s.adj[i] = (float64(asa[i])-128)*0.5/128 + 1
	}
	log.Printf("mag: AK8963 sensitivity adj X=%.4f Y=%.4f", s.adj[0], s.adj[1])

	if err := writeReg(s.mag, akRegCNTL1, akModePowerDown); err != nil {
		return fmt.Errorf("mag: power down AK8963: %w", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := writeReg(s.mag, akRegCNTL1, akModeCont100Hz); err != nil {
		return fmt.Errorf("mag: enter continuous mode: %w", err)
	}
	time.Sleep(10 * time.Millisecond)

	log.Printf("mag: AK8963 up in continuous 100 Hz mode, forward=%+d*%s lateral=%+d*%s",
		int(s.forward.sign), []string{"X", "Y"}[s.forward.index],
		int(s.lateral.sign), []string{"X", "Y"}[s.lateral.index])
	return nil
}

// Next reads one magnetometer sample and resolves it into vessel axes.
func (s *magSource) Next() (heading.Sample, error) {
	// HXL..HZH plus ST2; reading through ST2 releases the data latch.
	buf := make([]byte, 7)
	if err := s.mag.Tx([]byte{akRegHXL}, buf); err != nil {
		return heading.Sample{}, fmt.Errorf("mag: read measurement: %w", err)
	}
	if buf[6]&akBitOverflow != 0 {
		return heading.Sample{}, fmt.Errorf("mag: sensor overflow, sample discarded")
	}

	// Little-endian 16-bit counts, scaled by the per-axis fuse ROM adjustment.
	field := [2]float64{
		float64(int16(uint16(buf[0])|uint16(buf[1])<<8)) * s.adj[0],
		float64(int16(uint16(buf[2])|uint16(buf[3])<<8)) * s.adj[1],
	}

	return heading.Sample{
		Forward: s.forward.sign * field[s.forward.index],
		Lateral: s.lateral.sign * field[s.lateral.index],
	}, nil
}

func readReg(dev *i2c.Dev, reg byte) (byte, error) {
	buf := make([]byte, 1)
	if err := dev.Tx([]byte{reg}, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeReg(dev *i2c.Dev, reg, value byte) error {
	return dev.Tx([]byte{reg, value}, nil)
}
