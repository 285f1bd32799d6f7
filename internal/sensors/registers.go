// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// MPU-9250 registers used to reach the AK8963 magnetometer behind it.
const (
	regIntPinCfg = 0x37 // INT Pin / Bypass Enable Configuration
	regPwrMgmt1  = 0x6B // Power Management 1
	regWhoAmI    = 0x75 // Device ID

	whoAmIMPU9250 = 0x71
	whoAmIMPU9255 = 0x73

	bitBypassEn = 0x02 // INT_PIN_CFG: route the aux I2C bus to the host
	bitHReset   = 0x80 // PWR_MGMT_1: hardware reset
)

// AK8963 registers, visible on the bus once bypass is enabled.
const (
	ak8963Addr = 0x0C

	akRegWIA   = 0x00 // Device ID
	akRegST1   = 0x02 // Status 1 (DRDY)
	akRegHXL   = 0x03 // Measurement data X low byte, 6 bytes + ST2 follow
	akRegST2   = 0x09 // Status 2 (overflow); reading it ends the data latch
	akRegCNTL1 = 0x0A // Control 1 (mode, output width)
	akRegASAX  = 0x10 // Fuse ROM sensitivity adjustment, 3 bytes

	akDeviceID = 0x48

	akModePowerDown = 0x00
	akModeFuseROM   = 0x0F
	akModeCont100Hz = 0x16 // 16-bit output, 100 Hz continuous measurement

	akBitDataReady = 0x01 // ST1
	akBitOverflow  = 0x08 // ST2: magnetic sensor overflow, data invalid
)
