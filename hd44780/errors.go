// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/display"
)

const packageName = "hd44780"

var (
	// ErrRowOutOfRange is returned when a row is outside the panel geometry.
	ErrRowOutOfRange = errors.New("hd44780: row out of range")
	// ErrColumnOutOfRange is returned when a column is outside the panel
	// geometry.
	ErrColumnOutOfRange = errors.New("hd44780: column out of range")
	// ErrUnsupportedDisplayType is returned by Init when the adapter can't
	// drive the configured panel.
	ErrUnsupportedDisplayType = errors.New("hd44780: display type not supported by adapter")
	// ErrBadControllerID is returned when a controller index is not below the
	// adapter's controller count.
	ErrBadControllerID = errors.New("hd44780: bad controller id")
	// ErrReadNotSupported is returned by read operations on adapters whose
	// R/W line is not wired.
	ErrReadNotSupported = fmt.Errorf("hd44780: adapter can't read from the controller: %w", display.ErrNotImplemented)
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

func badController(controller int) error {
	return fmt.Errorf("%w: %d", ErrBadControllerID, controller)
}
