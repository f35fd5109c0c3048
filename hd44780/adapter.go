// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
)

// MaxControllers is the largest number of HD44780 controllers sharing one
// backpack.
const MaxControllers = 2

// Signals is the logical state of the HD44780 interface lines as driven
// through a backpack.
//
// Signals is a plain value. Adapters never keep a copy of it, the driver
// passes it in and gets a new one back.
type Signals struct {
	// RS selects the data register when true, the instruction register when
	// false.
	RS bool
	// RW requests a read from the controller.
	RW bool
	// Enable holds the E line of each controller.
	Enable    [MaxControllers]bool
	Backlight bool
	// Data is the value on D4..D7. Only the low nibble is used.
	Data byte
}

// Adapter is an I²C chip wired to the HD44780 interface pins.
//
// An adapter only knows where each line sits on the chip's port and how a
// port value is framed on the bus. It holds no state, so a single value may
// be shared between devices.
type Adapter interface {
	fmt.Stringer
	// DefaultAddress is the 7 bit bus address the backpack ships with.
	DefaultAddress() uint16
	// SupportsReads reports whether the R/W line is wired.
	SupportsReads() bool
	// ControllerCount is the number of HD44780 controllers on the backpack.
	ControllerCount() int
	// IsCompatible reports whether the adapter can drive a panel of type t.
	IsCompatible(t DisplayType) bool
	// ControllerRow maps a panel row to the controller driving it and the row
	// index local to that controller.
	ControllerRow(row int) (controller, localRow int)
	// HardwareInit configures the adapter chip itself. It is called once
	// before the controllers are reset.
	HardwareInit(d *i2c.Dev) error
	// SetEnable sets the E line of one controller. s is left untouched when
	// controller is out of range.
	SetEnable(s *Signals, on bool, controller int) error
	// Encode returns the bus write that puts s on the port.
	Encode(s Signals) []byte
	// Decode returns the lines held in a port frame read back from the bus.
	// ok is false when frame doesn't have the adapter's frame shape.
	Decode(frame []byte) (s Signals, ok bool)
}

// pinMap is the bit position of each line on an 8 bit expander port. -1 means
// the line is not wired.
type pinMap struct {
	rs        int
	rw        int
	backlight int
	enable    [MaxControllers]int
	// d4 is the position of D4. D5..D7 follow it.
	d4 int
}

func (m *pinMap) encode(s Signals) byte {
	b := pinBit(m.rs, s.RS) | pinBit(m.rw, s.RW) | pinBit(m.backlight, s.Backlight)
	for c, pos := range m.enable {
		b |= pinBit(pos, s.Enable[c])
	}
	return b | (s.Data&0x0f)<<m.d4
}

func (m *pinMap) decode(b byte) Signals {
	s := Signals{
		RS:        pinSet(b, m.rs),
		RW:        pinSet(b, m.rw),
		Backlight: pinSet(b, m.backlight),
		Data:      (b >> m.d4) & 0x0f,
	}
	for c, pos := range m.enable {
		s.Enable[c] = pinSet(b, pos)
	}
	return s
}

func pinBit(pos int, on bool) byte {
	if pos < 0 || !on {
		return 0
	}
	return 1 << pos
}

func pinSet(b byte, pos int) bool {
	return pos >= 0 && b&(1<<pos) != 0
}

func setEnable(count int, s *Signals, on bool, controller int) error {
	if controller < 0 || controller >= count {
		return badController(controller)
	}
	s.Enable[controller] = on
	return nil
}

// Adapters returns the names accepted by ParseAdapter.
func Adapters() []string {
	return []string{"generic-pcf8574t", "adafruit", "dual-pcf8574t"}
}

// ParseAdapter returns the adapter registered under name. Matching ignores
// case.
func ParseAdapter(name string) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "generic-pcf8574t", "pcf8574t", "pcf8574":
		return GenericPCF8574T{}, nil
	case "adafruit", "mcp23008":
		return AdafruitI2CBackpack{}, nil
	case "dual-pcf8574t":
		return DualPCF8574T{}, nil
	}
	return nil, fmt.Errorf("%s: unknown adapter %q, expected one of %s", packageName, name, strings.Join(Adapters(), ", "))
}
