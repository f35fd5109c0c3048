// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Turn on or off shifting the display on every character written.
func (dev *Dev) AutoScroll(enabled bool) error {
	return dev.SetAutoScroll(enabled)
}

// Return the number of columns the display supports
func (dev *Dev) Cols() int {
	return dev.geometry.Cols
}

// Return the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.geometry.Rows
}

// Return the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	var show, blink bool
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			show, blink = false, false
		case display.CursorUnderline:
			show = true
		case display.CursorBlock, display.CursorBlink:
			blink = true
		default:
			return fmt.Errorf("%s: %w: cursor mode %d", packageName, display.ErrInvalidCommand, mode)
		}
	}
	if err := dev.ShowCursor(show); err != nil {
		return err
	}
	return dev.BlinkCursor(blink)
}

// Move the cursor forward or backward on the active controller.
func (dev *Dev) Move(dir display.CursorDirection) error {
	var val = cmdCursorShift
	switch dir {
	case display.Backward:
	case display.Forward:
		val |= shiftRight
	case display.Down, display.Up:
		return fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	default:
		return fmt.Errorf("%s: %w: direction %d", packageName, display.ErrInvalidCommand, dir)
	}
	return dev.command(dev.active, val)
}

// Move the cursor to the 1 based position row, col.
func (dev *Dev) MoveTo(row, col int) error {
	return dev.SetCursor(col-dev.MinCol(), row-dev.MinRow())
}

// Turn the display on / off
func (dev *Dev) Display(on bool) error {
	return dev.ShowDisplay(on)
}

// Write a set of bytes to the display at the cursor of the active controller.
func (dev *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = dev.send(dev.active, true, b, delayCharacter); err != nil {
			return
		}
		n++
	}
	return
}

// Write a string output to the display.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

// Return info about the display.
func (dev *Dev) String() string {
	return fmt.Sprintf("HD44780::%s@%#x - Rows: %d, Cols: %d", dev.adapter, dev.d.Addr, dev.geometry.Rows, dev.geometry.Cols)
}

// Halt clears the display, turns the backlight off, and turns the display off.
func (dev *Dev) Halt() error {
	return errors.Join(dev.Clear(), dev.Backlight(0), dev.Display(false))
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
