// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls character LCDs built on the Hitachi HD44780
// chipset through an I²C backpack.
//
// The backpack chip is described by an Adapter. Adapters are provided for the
// common PCF8574T backpack, the Adafruit MCP23008 backpack and the PCF8574T
// backpack of 40x4 panels, which carry two HD44780 controllers.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Instructions and their flags.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCursorShift    byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80

	entryLeft           byte = 0x02
	entryShiftIncrement byte = 0x01

	displayOn byte = 0x04
	cursorOn  byte = 0x02
	blinkOn   byte = 0x01

	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04

	function8Bit  byte = 0x10
	function2Line byte = 0x08
	function5x10  byte = 0x04

	busyFlag byte = 0x80
)

const (
	delayReset      = 5 * time.Millisecond
	delayResetFinal = 150 * time.Microsecond
	delayCommand    = 39 * time.Microsecond
	delayClearHome  = 2 * time.Millisecond
	delayCharacter  = 43 * time.Microsecond
)

// Opts holds the configuration options.
type Opts struct {
	// Address is the I²C address of the backpack. 0 selects the adapter's
	// default.
	Address uint16
	// Type is the panel size. The zero value is LCD16x2.
	Type DisplayType
	// Sleep waits for the controller to execute an instruction. nil selects
	// time.Sleep.
	Sleep func(time.Duration)
}

// Dev is a character LCD driven by one or two HD44780 controllers behind an
// I²C backpack.
//
// Dev is not safe for concurrent use.
type Dev struct {
	d        *i2c.Dev
	p        port
	adapter  Adapter
	kind     DisplayType
	geometry Geometry
	sleep    func(time.Duration)

	// lines is the state last written to the bus.
	lines Signals
	// Per controller copies of the function set, display control and entry
	// mode registers.
	function [MaxControllers]byte
	control  [MaxControllers]byte
	mode     [MaxControllers]byte
	// active is the controller receiving Print and holding the cursor.
	active int
}

// New returns a Dev that talks to the backpack on bus through adapter.
//
// Nothing is sent to the bus until Init is called.
func New(bus i2c.Bus, adapter Adapter, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if !opts.Type.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDisplayType, opts.Type)
	}
	addr := opts.Address
	if addr == 0 {
		addr = adapter.DefaultAddress()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	d := &i2c.Dev{Bus: bus, Addr: addr}
	return &Dev{
		d:        d,
		p:        port{d: d, adapter: adapter},
		adapter:  adapter,
		kind:     opts.Type,
		geometry: opts.Type.Geometry(),
		sleep:    sleep,
	}, nil
}

func newInitialized(bus i2c.Bus, adapter Adapter, opts *Opts) (*Dev, error) {
	dev, err := New(bus, adapter, opts)
	if err != nil {
		return nil, err
	}
	return dev, dev.Init()
}

// Init configures the backpack then resets every controller into 4 bit,
// 2 line mode with the display on, the cursor hidden and left to right entry.
// The backlight is turned on last.
func (dev *Dev) Init() error {
	if !dev.adapter.IsCompatible(dev.kind) {
		return fmt.Errorf("%w: %s can't drive %s", ErrUnsupportedDisplayType, dev.adapter, dev.kind)
	}
	if err := dev.adapter.HardwareInit(dev.d); err != nil {
		return wrap(err)
	}
	function := function2Line
	control := displayOn
	mode := entryLeft
	for c := range dev.adapter.ControllerCount() {
		// The controller may be in 8 bit mode or halfway through a 4 bit
		// transfer. Three 8 bit function sets resynchronize it.
		for _, wait := range []time.Duration{delayReset, delayReset, delayResetFinal} {
			if err := dev.writeNibble(c, 0x03); err != nil {
				return err
			}
			dev.sleep(wait)
		}
		if err := dev.writeNibble(c, 0x02); err != nil {
			return err
		}
		if err := dev.command(c, cmdFunctionSet|function); err != nil {
			return err
		}
		dev.function[c] = function
		if err := dev.command(c, cmdDisplayControl|control); err != nil {
			return err
		}
		dev.control[c] = control
		if err := dev.command(c, cmdEntryModeSet|mode); err != nil {
			return err
		}
		dev.mode[c] = mode
		if err := dev.ClearController(c); err != nil {
			return err
		}
		if err := dev.HomeController(c); err != nil {
			return err
		}
	}
	if err := dev.SetBacklight(true); err != nil {
		return err
	}
	dev.active = 0
	return nil
}

// Adapter returns the backpack the display is driven through.
func (dev *Dev) Adapter() Adapter {
	return dev.adapter
}

// Type returns the panel size.
func (dev *Dev) Type() DisplayType {
	return dev.kind
}

// SupportsReads reports whether the busy flag and RAM can be read back
// through the adapter.
func (dev *Dev) SupportsReads() bool {
	return dev.adapter.SupportsReads()
}

// Controllers returns the number of HD44780 controllers on the panel.
func (dev *Dev) Controllers() int {
	return dev.adapter.ControllerCount()
}

// ActiveController returns the controller holding the cursor.
func (dev *Dev) ActiveController() int {
	return dev.active
}

// Clear blanks every controller and returns their address counters to 0.
func (dev *Dev) Clear() error {
	for c := range dev.adapter.ControllerCount() {
		if err := dev.ClearController(c); err != nil {
			return err
		}
	}
	return nil
}

// ClearController blanks controller c only.
func (dev *Dev) ClearController(c int) error {
	if err := dev.checkController(c); err != nil {
		return err
	}
	return dev.send(c, false, cmdClearDisplay, delayClearHome)
}

// Home returns the cursor to the top left corner of the panel.
func (dev *Dev) Home() error {
	if err := dev.HomeController(0); err != nil {
		return err
	}
	dev.active = 0
	return nil
}

// HomeController returns the cursor and display shift of controller c to
// their origin.
func (dev *Dev) HomeController(c int) error {
	if err := dev.checkController(c); err != nil {
		return err
	}
	return dev.send(c, false, cmdReturnHome, delayClearHome)
}

// SetCursor moves the cursor to the 0 based position col, row. The controller
// driving row becomes the active controller.
func (dev *Dev) SetCursor(col, row int) error {
	if row < 0 || row >= dev.geometry.Rows {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if col < 0 || col >= dev.geometry.Cols {
		return fmt.Errorf("%w: %d", ErrColumnOutOfRange, col)
	}
	c, local := dev.adapter.ControllerRow(row)
	if err := dev.checkController(c); err != nil {
		return err
	}
	dev.active = c
	return dev.command(c, cmdSetDDRAMAddr|(byte(col)+dev.geometry.RowOffsets[local]))
}

// ShowCursor shows or hides the underline cursor. Only the active controller
// shows it, the others have both cursors turned off.
func (dev *Dev) ShowCursor(show bool) error {
	return dev.updateControl(func(c int, v byte) byte {
		if c != dev.active {
			return v &^ (cursorOn | blinkOn)
		}
		return setFlag(v, cursorOn, show)
	})
}

// BlinkCursor turns the blinking block cursor on or off. Only the active
// controller blinks, the others have both cursors turned off.
func (dev *Dev) BlinkCursor(blink bool) error {
	return dev.updateControl(func(c int, v byte) byte {
		if c != dev.active {
			return v &^ (cursorOn | blinkOn)
		}
		return setFlag(v, blinkOn, blink)
	})
}

// ShowDisplay turns the display on or off. DDRAM content is kept while off.
func (dev *Dev) ShowDisplay(on bool) error {
	return dev.updateControl(func(_ int, v byte) byte {
		return setFlag(v, displayOn, on)
	})
}

// ScrollLeft shifts the whole display one column to the left.
func (dev *Dev) ScrollLeft() error {
	return dev.commandAll(cmdCursorShift | shiftDisplay)
}

// ScrollRight shifts the whole display one column to the right.
func (dev *Dev) ScrollRight() error {
	return dev.commandAll(cmdCursorShift | shiftDisplay | shiftRight)
}

// LeftToRight makes text flow to the right of the cursor.
func (dev *Dev) LeftToRight() error {
	return dev.updateMode(func(v byte) byte { return v | entryLeft })
}

// RightToLeft makes text flow to the left of the cursor.
func (dev *Dev) RightToLeft() error {
	return dev.updateMode(func(v byte) byte { return v &^ entryLeft })
}

// SetAutoScroll shifts the display on every character written instead of
// moving the cursor.
func (dev *Dev) SetAutoScroll(on bool) error {
	return dev.updateMode(func(v byte) byte { return setFlag(v, entryShiftIncrement, on) })
}

// CreateChar stores a 5x8 glyph in CGRAM slot location (0 to 7) of every
// controller. The glyph is then printed with the byte value location. The
// DDRAM address must be set again with SetCursor before printing.
func (dev *Dev) CreateChar(location byte, charmap [8]byte) error {
	location &= 0x07
	for c := range dev.adapter.ControllerCount() {
		if err := dev.command(c, cmdSetCGRAMAddr|location<<3); err != nil {
			return err
		}
		for _, row := range charmap {
			if err := dev.send(c, true, row, delayCharacter); err != nil {
				return err
			}
		}
	}
	return nil
}

// Print writes text at the cursor of the active controller. Bytes are sent
// as is, the panel's character ROM decides what they look like.
func (dev *Dev) Print(text string) error {
	return dev.PrintController(dev.active, text)
}

// PrintController writes text at the cursor of controller c.
func (dev *Dev) PrintController(c int, text string) error {
	if err := dev.checkController(c); err != nil {
		return err
	}
	for i := 0; i < len(text); i++ {
		if err := dev.send(c, true, text[i], delayCharacter); err != nil {
			return err
		}
	}
	return nil
}

// SetBacklight turns the backlight on or off.
func (dev *Dev) SetBacklight(on bool) error {
	dev.lines.Backlight = on
	return dev.p.write(dev.lines)
}

// Busy reports whether the active controller is still executing an
// instruction. It returns ErrReadNotSupported when the adapter can't read.
func (dev *Dev) Busy() (bool, error) {
	return dev.p.busy(dev.lines, dev.active)
}

// ReadDeviceData fills buf with DDRAM or CGRAM content starting at the address
// counter of the active controller. The counter advances by one per byte.
func (dev *Dev) ReadDeviceData(buf []byte) error {
	return dev.p.readBytes(dev.lines, dev.active, true, buf)
}

// ReadAddressCounter returns the address counter of the active controller.
func (dev *Dev) ReadAddressCounter() (byte, error) {
	var b [1]byte
	if err := dev.p.readBytes(dev.lines, dev.active, false, b[:]); err != nil {
		return 0, err
	}
	return b[0] &^ busyFlag, nil
}

func (dev *Dev) checkController(c int) error {
	if c < 0 || c >= dev.adapter.ControllerCount() {
		return badController(c)
	}
	return nil
}

// updateControl recomputes the display control register of each controller
// with f and sends it.
func (dev *Dev) updateControl(f func(c int, v byte) byte) error {
	for c := range dev.adapter.ControllerCount() {
		v := f(c, dev.control[c])
		if err := dev.command(c, cmdDisplayControl|v); err != nil {
			return err
		}
		dev.control[c] = v
	}
	return nil
}

func (dev *Dev) updateMode(f func(v byte) byte) error {
	for c := range dev.adapter.ControllerCount() {
		v := f(dev.mode[c])
		if err := dev.command(c, cmdEntryModeSet|v); err != nil {
			return err
		}
		dev.mode[c] = v
	}
	return nil
}

func (dev *Dev) commandAll(cmd byte) error {
	for c := range dev.adapter.ControllerCount() {
		if err := dev.command(c, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (dev *Dev) command(c int, cmd byte) error {
	return dev.send(c, false, cmd, delayCommand)
}

// send writes one byte to controller c and waits settle for it to execute.
func (dev *Dev) send(c int, rs bool, value byte, settle time.Duration) error {
	s, err := dev.p.writeByte(dev.lines, c, rs, value)
	dev.lines = s
	if err != nil {
		return err
	}
	dev.sleep(settle)
	return nil
}

func (dev *Dev) writeNibble(c int, value byte) error {
	s, err := dev.p.writeNibble(dev.lines, c, false, value)
	dev.lines = s
	return err
}

func setFlag(v, flag byte, on bool) byte {
	if on {
		return v | flag
	}
	return v &^ flag
}
