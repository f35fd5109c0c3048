// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	log "github.com/sirupsen/logrus"
)

// command is a parsed lcdctl invocation.
type command struct {
	name string
	// reset runs Init before the command. A simulated panel is always reset
	// since it starts at power on.
	reset     bool
	backlight bool

	text     string
	col, row int
	on       bool
	show     bool
	blink    bool
}

func run(l *lcd, c command) error {
	if c.reset || l.sim != nil {
		log.Debug("Resetting the controllers")
		if err := l.dev.Init(); err != nil {
			return err
		}
	}
	// Init turns the backlight on.
	if c.name != "status" && c.name != "backlight" {
		if err := l.dev.SetBacklight(c.backlight); err != nil {
			return err
		}
	}
	switch c.name {
	case "init":
		return nil
	case "print":
		if err := l.dev.SetCursor(c.col, c.row); err != nil {
			return err
		}
		log.WithFields(log.Fields{"col": c.col, "row": c.row}).Debugf("Printing %q", c.text)
		return l.dev.Print(c.text)
	case "clear":
		return l.dev.Clear()
	case "backlight":
		return l.dev.SetBacklight(c.on)
	case "cursor":
		if err := l.dev.ShowCursor(c.show); err != nil {
			return err
		}
		return l.dev.BlinkCursor(c.blink)
	case "status":
		return status(l)
	}
	return fmt.Errorf("unknown command %q", c.name)
}

func status(l *lcd) error {
	dev := l.dev
	fmt.Fprintln(l.out, dev.String())
	fmt.Fprintf(l.out, "type: %s, controllers: %d, reads: %t\n", dev.Type(), dev.Controllers(), dev.Adapter().SupportsReads())
	ac, err := dev.ReadAddressCounter()
	switch {
	case errors.Is(err, hd44780.ErrReadNotSupported):
		log.Debug("Address counter can't be read through this adapter")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(l.out, "address counter: %#04x\n", ac)
	return nil
}
