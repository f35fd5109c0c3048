// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/GermanBionicSystems/charlcd/lcdsim"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// lcd is an opened display, real or simulated.
type lcd struct {
	dev *hd44780.Dev
	out io.Writer

	// bus is closed with the display. nil when simulated.
	bus    i2c.BusCloser
	sim    *lcdsim.Bus
	screen *lcdsim.Screen
}

// open prepares the display described by c. Reports are written to out, nil
// selects stdout and draws the simulated panel through a colorable console.
func open(c *Config, out io.Writer) (*lcd, error) {
	adapter, err := hd44780.ParseAdapter(c.Adapter)
	if err != nil {
		return nil, err
	}
	l := &lcd{out: out}
	if out == nil {
		l.out = os.Stdout
	}
	var bus i2c.Bus
	if c.Simulate {
		l.sim = lcdsim.New(adapter, c.Display, c.Address)
		l.screen = lcdsim.NewScreen(&lcdsim.ScreenOpts{W: out})
		bus = l.sim
	} else {
		if _, err = host.Init(); err != nil {
			return nil, err
		}
		if l.bus, err = i2creg.Open(c.Bus); err != nil {
			return nil, fmt.Errorf("failed to open I²C: %w", err)
		}
		bus = l.bus
	}
	log.WithFields(log.Fields{
		"bus":     bus.String(),
		"adapter": adapter.String(),
		"display": c.Display.String(),
	}).Debug("Opening display")
	l.dev, err = hd44780.New(bus, adapter, &hd44780.Opts{Address: c.Address, Type: c.Display})
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	return l, nil
}

// Close draws the simulated panel, or releases the bus.
func (l *lcd) Close() error {
	if l.screen != nil {
		return l.screen.Render(l.sim)
	}
	if l.bus != nil {
		return l.bus.Close()
	}
	return nil
}
