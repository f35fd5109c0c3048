// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinygobus exposes a TinyGo I²C bus as a periph i2c.Bus, so the
// hd44780 driver runs unchanged on microcontrollers.
//
//	machine.I2C0.Configure(machine.I2CConfig{Frequency: 100 * machine.KHz})
//	dev, err := hd44780.NewGenericPCF8574T(tinygobus.New(machine.I2C0), hd44780.LCD16x2)
package tinygobus

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// baudRater is implemented by machine.I2C.
type baudRater interface {
	SetBaudRate(br uint32) error
}

// Bus wraps a drivers.I2C.
type Bus struct {
	mu  sync.Mutex
	bus drivers.I2C
}

// New returns an i2c.Bus sending every transaction to bus.
func New(bus drivers.I2C) *Bus {
	return &Bus{bus: bus}
}

func (b *Bus) String() string {
	return fmt.Sprintf("tinygo(%T)", b.bus)
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Tx(addr, w, r)
}

// SetSpeed implements i2c.Bus. It is forwarded to SetBaudRate when the
// underlying bus has one.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	br, ok := b.bus.(baudRater)
	if !ok {
		return fmt.Errorf("tinygobus: %T can't change its speed", b.bus)
	}
	if f <= 0 || f/physic.Hertz > 0xffffffff {
		return fmt.Errorf("tinygobus: invalid speed %s", f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return br.SetBaudRate(uint32(f / physic.Hertz))
}

var _ i2c.Bus = &Bus{}
