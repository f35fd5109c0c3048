// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/i2c"
)

// port moves nibbles and bytes over the HD44780 4 bit interface through an
// adapter. It keeps no line state of its own. Every call takes the current
// Signals and returns the ones left on the bus.
type port struct {
	d       *i2c.Dev
	adapter Adapter
}

func (p *port) write(s Signals) error {
	return wrap(p.d.Tx(p.adapter.Encode(s), nil))
}

// read samples the port. Only adapters with single byte frames can be read.
func (p *port) read() (Signals, error) {
	r := make([]byte, 1)
	if err := p.d.Tx(nil, r); err != nil {
		return Signals{}, wrap(err)
	}
	s, ok := p.adapter.Decode(r)
	if !ok {
		return Signals{}, ErrReadNotSupported
	}
	return s, nil
}

// writeNibble latches the low 4 bits of value into controller c. The
// controller samples D4..D7 on the falling edge of E.
func (p *port) writeNibble(s Signals, c int, rs bool, value byte) (Signals, error) {
	next := s
	next.RS = rs
	next.RW = false
	next.Data = value & 0x0f
	if err := p.adapter.SetEnable(&next, true, c); err != nil {
		return s, err
	}
	if err := p.write(next); err != nil {
		return s, err
	}
	high := next
	next.Enable[c] = false
	if err := p.write(next); err != nil {
		return high, err
	}
	return next, nil
}

// writeByte sends value to controller c, high nibble first.
func (p *port) writeByte(s Signals, c int, rs bool, value byte) (Signals, error) {
	s, err := p.writeNibble(s, c, rs, value>>4)
	if err != nil {
		return s, err
	}
	return p.writeNibble(s, c, rs, value)
}

// readSetup drives a read of register rs on controller c with E low. The
// data lines are written high so the controller can pull them down.
func (p *port) readSetup(s Signals, c int, rs bool) (Signals, error) {
	s.RS = rs
	s.RW = true
	s.Data = 0x0f
	if err := p.adapter.SetEnable(&s, false, c); err != nil {
		return s, err
	}
	return s, p.write(s)
}

// strobe raises then lowers E on controller c. When sample is set the port
// is read while E is high and the data nibble is returned.
func (p *port) strobe(s Signals, c int, sample bool) (byte, error) {
	s.Enable[c] = true
	if err := p.write(s); err != nil {
		return 0, err
	}
	var data byte
	if sample {
		in, err := p.read()
		if err != nil {
			return 0, err
		}
		data = in.Data
	}
	s.Enable[c] = false
	return data, p.write(s)
}

// busy reports the busy flag of controller c. The second strobe completes
// the 4 bit transfer of the status register.
func (p *port) busy(s Signals, c int) (bool, error) {
	if !p.adapter.SupportsReads() {
		return false, ErrReadNotSupported
	}
	s, err := p.readSetup(s, c, false)
	if err != nil {
		return false, err
	}
	hi, err := p.strobe(s, c, true)
	if err != nil {
		return false, err
	}
	if _, err := p.strobe(s, c, false); err != nil {
		return false, err
	}
	return hi&0x08 != 0, nil
}

// waitReady polls controller c until it clears its busy flag.
func (p *port) waitReady(s Signals, c int) error {
	for {
		busy, err := p.busy(s, c)
		if err != nil || !busy {
			return err
		}
	}
}

// readBytes fills buf from register rs of controller c. The controller is
// polled before every byte. s is the current line state. It is not updated,
// the caller's next write restores the lines.
func (p *port) readBytes(s Signals, c int, rs bool, buf []byte) error {
	if !p.adapter.SupportsReads() {
		return ErrReadNotSupported
	}
	for i := range buf {
		if err := p.waitReady(s, c); err != nil {
			return err
		}
		rd, err := p.readSetup(s, c, rs)
		if err != nil {
			return err
		}
		hi, err := p.strobe(rd, c, true)
		if err != nil {
			return err
		}
		lo, err := p.strobe(rd, c, true)
		if err != nil {
			return err
		}
		buf[i] = hi<<4 | lo
	}
	return nil
}
