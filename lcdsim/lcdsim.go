// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim implements an i2c.Bus with a character LCD attached.
//
// The bus decodes every port write through an hd44780.Adapter and feeds the
// enable strobes to a model of each HD44780 controller. The model executes
// instructions, keeps DDRAM and CGRAM, and answers busy flag and data reads
// on adapters that wire R/W. Useful to run a display without the hardware,
// and to check what a driver actually put on the panel.
package lcdsim

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Bus is an I²C bus with one simulated backpack on it.
type Bus struct {
	mu       sync.Mutex
	adapter  hd44780.Adapter
	kind     hd44780.DisplayType
	geometry hd44780.Geometry
	addr     uint16
	speed    physic.Frequency

	lines  hd44780.Signals
	config [][]byte
	ctrl   []*controller
}

// New returns a bus with a kind panel behind adapter at addr. addr 0 selects
// the adapter's default address.
func New(adapter hd44780.Adapter, kind hd44780.DisplayType, addr uint16) *Bus {
	if addr == 0 {
		addr = adapter.DefaultAddress()
	}
	b := &Bus{
		adapter:  adapter,
		kind:     kind,
		geometry: kind.Geometry(),
		addr:     addr,
	}
	for range adapter.ControllerCount() {
		b.ctrl = append(b.ctrl, newController())
	}
	return b
}

func (b *Bus) String() string {
	return fmt.Sprintf("lcdsim(%s %s@%#x)", b.adapter, b.kind, b.addr)
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = f
	return nil
}

// Tx implements i2c.Bus.
//
// Writes that don't decode as a port frame are kept as configuration writes.
// Reads return the port with the data lines driven by the controller whose E
// line is high during a read.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr != b.addr {
		return fmt.Errorf("lcdsim: no device at address %#x", addr)
	}
	if len(w) != 0 {
		if s, ok := b.adapter.Decode(w); ok {
			b.apply(s)
		} else {
			b.config = append(b.config, slices.Clone(w))
		}
	}
	if len(r) != 0 {
		if !b.adapter.SupportsReads() {
			return errors.New("lcdsim: the backpack can't be read")
		}
		s := b.lines
		if s.RW {
			for c, ctl := range b.ctrl {
				if s.Enable[c] {
					s.Data &= ctl.out
				}
			}
		}
		frame := b.adapter.Encode(s)
		for i := range r {
			r[i] = frame[len(frame)-1]
		}
	}
	return nil
}

// apply latches the edges between the previous port state and s.
func (b *Bus) apply(s hd44780.Signals) {
	prev := b.lines
	b.lines = s
	for c, ctl := range b.ctrl {
		switch {
		case !prev.Enable[c] && s.Enable[c] && s.RW:
			ctl.readStrobe(s.RS)
		case prev.Enable[c] && !s.Enable[c] && !prev.RW:
			ctl.writeNibble(prev.RS, prev.Data)
		}
	}
}

// Lines returns the characters currently visible on each row. Blank rows are
// returned while the display is off.
func (b *Bus) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lines := make([]string, b.geometry.Rows)
	for row := range lines {
		c, local := b.adapter.ControllerRow(row)
		lines[row] = b.ctrl[c].line(b.geometry.RowOffsets[local], b.geometry.Cols)
	}
	return lines
}

// Backlight reports the backlight line.
func (b *Bus) Backlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.Backlight
}

// lookup returns controller c, or nil when the panel has no such
// controller. b.mu must be held.
func (b *Bus) lookup(c int) *controller {
	if c < 0 || c >= len(b.ctrl) {
		return nil
	}
	return b.ctrl[c]
}

// Address returns the address counter of controller c. It is 0 for a
// controller the panel doesn't have.
func (b *Bus) Address(c int) byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctl := b.lookup(c); ctl != nil {
		return ctl.ac
	}
	return 0
}

// DisplayOn reports whether controller c has its display enabled.
func (b *Bus) DisplayOn(c int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctl := b.lookup(c); ctl != nil {
		return ctl.displayOn
	}
	return false
}

// Cursor returns the cursor flags of controller c. Both are false for a
// controller the panel doesn't have.
func (b *Bus) Cursor(c int) (visible, blink bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctl := b.lookup(c); ctl != nil {
		return ctl.cursorOn, ctl.blinkOn
	}
	return false, false
}

// CGRAM returns the character generator RAM of controller c. Glyph n is held
// in bytes 8*n to 8*n+7.
func (b *Bus) CGRAM(c int) [cgramSize]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctl := b.lookup(c); ctl != nil {
		return ctl.cgram
	}
	return [cgramSize]byte{}
}

// FourBit reports whether controller c was switched to the 4 bit interface.
func (b *Bus) FourBit(c int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ctl := b.lookup(c); ctl != nil {
		return !ctl.eightBit
	}
	return false
}

// ConfigWrites returns the writes that were not port frames, like MCP23008
// register setup.
func (b *Bus) ConfigWrites() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.config)
}

// Speed returns the last frequency passed to SetSpeed.
func (b *Bus) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

var _ i2c.Bus = &Bus{}
