// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/i2c"
)

// MCP23008 registers.
const (
	mcpIODIR byte = 0x00
	mcpGPIO  byte = 0x09
)

// MCP23008 port bits on the Adafruit backpack. R/W is tied low.
var mcpPins = pinMap{rs: 1, rw: -1, enable: [MaxControllers]int{2, -1}, d4: 3, backlight: 7}

// AdafruitI2CBackpack is the Adafruit I2C/SPI character LCD backpack in I²C
// mode. It uses an MCP23008, so every port write goes through the GPIO
// register.
//
// # Product Information
//
// https://www.adafruit.com/product/292
type AdafruitI2CBackpack struct{}

func (AdafruitI2CBackpack) String() string         { return "AdafruitI2CBackpack" }
func (AdafruitI2CBackpack) DefaultAddress() uint16 { return 0x20 }
func (AdafruitI2CBackpack) SupportsReads() bool    { return false }
func (AdafruitI2CBackpack) ControllerCount() int   { return 1 }

func (AdafruitI2CBackpack) IsCompatible(t DisplayType) bool {
	return t.valid() && t != LCD40x4
}

func (AdafruitI2CBackpack) ControllerRow(row int) (int, int) {
	return 0, row
}

// HardwareInit sets every MCP23008 pin as an output.
func (AdafruitI2CBackpack) HardwareInit(d *i2c.Dev) error {
	return d.Tx([]byte{mcpIODIR, 0x00}, nil)
}

func (a AdafruitI2CBackpack) SetEnable(s *Signals, on bool, controller int) error {
	return setEnable(a.ControllerCount(), s, on, controller)
}

func (AdafruitI2CBackpack) Encode(s Signals) []byte {
	return []byte{mcpGPIO, mcpPins.encode(s)}
}

func (AdafruitI2CBackpack) Decode(frame []byte) (Signals, bool) {
	if len(frame) != 2 || frame[0] != mcpGPIO {
		return Signals{}, false
	}
	return mcpPins.decode(frame[1]), true
}

// NewAdafruitI2CBackpack returns an initialized display driven through an
// Adafruit backpack at its default address.
func NewAdafruitI2CBackpack(bus i2c.Bus, t DisplayType) (*Dev, error) {
	return newInitialized(bus, AdafruitI2CBackpack{}, &Opts{Type: t})
}

var _ Adapter = AdafruitI2CBackpack{}
