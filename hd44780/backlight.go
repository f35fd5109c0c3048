// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
)

// Turn the display backlight on or off. The backpacks switch the backlight
// with a single transistor, so any intensity above 0 is full on.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.SetBacklight(intensity > 0)
}

// BacklightOn reports the backlight state last written to the backpack.
func (dev *Dev) BacklightOn() bool {
	return dev.lines.Backlight
}
