// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/i2c"
)

// PCF8574 port bits on the common "I2C 1602/2004" backpacks.
var pcfPins = pinMap{rs: 0, rw: 1, enable: [MaxControllers]int{2, -1}, backlight: 3, d4: 4}

// GenericPCF8574T is the PCF8574T backpack soldered to most 16x2 and 20x4
// modules. The whole port is written as a single byte and R/W is wired, so
// the controller can be read.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
type GenericPCF8574T struct{}

func (GenericPCF8574T) String() string         { return "GenericPCF8574T" }
func (GenericPCF8574T) DefaultAddress() uint16 { return 0x27 }
func (GenericPCF8574T) SupportsReads() bool    { return true }
func (GenericPCF8574T) ControllerCount() int   { return 1 }

func (GenericPCF8574T) IsCompatible(t DisplayType) bool {
	return t.valid() && t != LCD40x4
}

func (GenericPCF8574T) ControllerRow(row int) (int, int) {
	return 0, row
}

// HardwareInit is a no-op. The PCF8574 has no configuration registers.
func (GenericPCF8574T) HardwareInit(*i2c.Dev) error {
	return nil
}

func (a GenericPCF8574T) SetEnable(s *Signals, on bool, controller int) error {
	return setEnable(a.ControllerCount(), s, on, controller)
}

func (GenericPCF8574T) Encode(s Signals) []byte {
	return []byte{pcfPins.encode(s)}
}

func (GenericPCF8574T) Decode(frame []byte) (Signals, bool) {
	if len(frame) != 1 {
		return Signals{}, false
	}
	return pcfPins.decode(frame[0]), true
}

// Port bits of the PCF8574T on backpacks driving two controllers. R/W is
// tied low and bit 1 carries the second enable line.
var dualPins = pinMap{rs: 0, rw: -1, enable: [MaxControllers]int{2, 1}, backlight: 3, d4: 4}

// DualPCF8574T is a PCF8574T backpack for 40x4 panels. Controller 0 drives
// rows 0 and 1, controller 1 rows 2 and 3.
type DualPCF8574T struct{}

func (DualPCF8574T) String() string         { return "DualPCF8574T" }
func (DualPCF8574T) DefaultAddress() uint16 { return 0x27 }
func (DualPCF8574T) SupportsReads() bool    { return false }
func (DualPCF8574T) ControllerCount() int   { return 2 }

func (DualPCF8574T) IsCompatible(t DisplayType) bool {
	return t == LCD40x4
}

func (DualPCF8574T) ControllerRow(row int) (int, int) {
	if row < 2 {
		return 0, row
	}
	return 1, row - 2
}

func (DualPCF8574T) HardwareInit(*i2c.Dev) error {
	return nil
}

func (a DualPCF8574T) SetEnable(s *Signals, on bool, controller int) error {
	return setEnable(a.ControllerCount(), s, on, controller)
}

func (DualPCF8574T) Encode(s Signals) []byte {
	return []byte{dualPins.encode(s)}
}

func (DualPCF8574T) Decode(frame []byte) (Signals, bool) {
	if len(frame) != 1 {
		return Signals{}, false
	}
	return dualPins.decode(frame[0]), true
}

// NewGenericPCF8574T returns an initialized display driven through a
// GenericPCF8574T backpack at its default address.
func NewGenericPCF8574T(bus i2c.Bus, t DisplayType) (*Dev, error) {
	return newInitialized(bus, GenericPCF8574T{}, &Opts{Type: t})
}

// NewDualPCF8574T returns an initialized 40x4 display driven through a
// DualPCF8574T backpack at its default address.
func NewDualPCF8574T(bus i2c.Bus) (*Dev, error) {
	return newInitialized(bus, DualPCF8574T{}, &Opts{Type: LCD40x4})
}

var (
	_ Adapter = GenericPCF8574T{}
	_ Adapter = DualPCF8574T{}
)
