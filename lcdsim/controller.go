// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

const (
	ddramSize = 0x80
	cgramSize = 64
	// lineLength is the DDRAM length of each line in 2 line mode.
	lineLength = 40
)

// controller models one HD44780. Instructions complete instantly so the
// busy flag always reads 0.
type controller struct {
	eightBit bool
	twoLine  bool
	// 4 bit transfers latch the high nibble first.
	pending bool
	high    byte
	// Reads return the high nibble then the low nibble of value.
	readLow bool
	value   byte
	out     byte

	ddram    [ddramSize]byte
	cgram    [cgramSize]byte
	ac       byte
	cgramSel bool

	increment    bool
	shiftOnWrite bool
	displayOn    bool
	cursorOn     bool
	blinkOn      bool
	// shift is how many columns the display was moved to the left.
	shift int
}

// newController returns a controller in its power on state.
func newController() *controller {
	c := &controller{eightBit: true, increment: true}
	c.clear()
	return c
}

func (c *controller) clear() {
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	c.ac = 0
	c.shift = 0
	c.cgramSel = false
	c.increment = true
}

func (c *controller) writeNibble(rs bool, n byte) {
	n &= 0x0f
	c.readLow = false
	if c.eightBit {
		// D0..D3 are not connected and read as 0.
		c.execute(rs, n<<4)
		return
	}
	if !c.pending {
		c.high = n
		c.pending = true
		return
	}
	c.pending = false
	c.execute(rs, c.high<<4|n)
}

func (c *controller) readStrobe(rs bool) {
	if !c.readLow {
		if rs {
			c.value = c.read()
		} else {
			c.value = c.ac & 0x7f
		}
		c.out = c.value >> 4
		c.readLow = !c.eightBit
		return
	}
	c.out = c.value & 0x0f
	c.readLow = false
	if rs {
		c.advance(c.increment)
	}
}

func (c *controller) read() byte {
	if c.cgramSel {
		return c.cgram[c.ac&(cgramSize-1)]
	}
	return c.ddram[c.ac&(ddramSize-1)]
}

func (c *controller) execute(rs bool, v byte) {
	if rs {
		c.write(v)
		return
	}
	switch {
	case v&0x80 != 0:
		c.ac = v & 0x7f
		c.cgramSel = false
	case v&0x40 != 0:
		c.ac = v & 0x3f
		c.cgramSel = true
	case v&0x20 != 0:
		c.eightBit = v&0x10 != 0
		c.twoLine = v&0x08 != 0
	case v&0x10 != 0:
		right := v&0x04 != 0
		if v&0x08 == 0 {
			c.advance(right)
		} else if right {
			c.shift--
		} else {
			c.shift++
		}
	case v&0x08 != 0:
		c.displayOn = v&0x04 != 0
		c.cursorOn = v&0x02 != 0
		c.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		c.increment = v&0x02 != 0
		c.shiftOnWrite = v&0x01 != 0
	case v&0x02 != 0:
		c.ac = 0
		c.shift = 0
		c.cgramSel = false
	case v&0x01 != 0:
		c.clear()
	}
}

func (c *controller) write(v byte) {
	if c.cgramSel {
		c.cgram[c.ac&(cgramSize-1)] = v
		c.advance(c.increment)
		return
	}
	c.ddram[c.ac&(ddramSize-1)] = v
	c.advance(c.increment)
	if c.shiftOnWrite {
		if c.increment {
			c.shift++
		} else {
			c.shift--
		}
	}
}

// advance moves the address counter by one. In 2 line mode DDRAM holds two
// 40 byte lines at 0x00 and 0x40 and the counter jumps between them.
func (c *controller) advance(up bool) {
	if c.cgramSel {
		if up {
			c.ac = (c.ac + 1) & (cgramSize - 1)
		} else {
			c.ac = (c.ac - 1) & (cgramSize - 1)
		}
		return
	}
	if !c.twoLine {
		if up {
			c.ac = (c.ac + 1) % (2 * lineLength)
		} else {
			c.ac = (c.ac + 2*lineLength - 1) % (2 * lineLength)
		}
		return
	}
	switch {
	case up && c.ac == lineLength-1:
		c.ac = 0x40
	case up && c.ac == 0x40+lineLength-1:
		c.ac = 0x00
	case !up && c.ac == 0x00:
		c.ac = 0x40 + lineLength - 1
	case !up && c.ac == 0x40:
		c.ac = lineLength - 1
	case up:
		c.ac = (c.ac + 1) & (ddramSize - 1)
	default:
		c.ac = (c.ac - 1) & (ddramSize - 1)
	}
}

// line returns cols characters of the line holding DDRAM address offset, as
// seen through the display shift.
func (c *controller) line(offset byte, cols int) string {
	buf := make([]byte, cols)
	if !c.displayOn {
		for i := range buf {
			buf[i] = ' '
		}
		return string(buf)
	}
	start, length := 0, 2*lineLength
	if c.twoLine {
		length = lineLength
		if offset >= 0x40 {
			start = 0x40
		}
	}
	pos := int(offset) - start
	for x := range buf {
		i := (pos + x + c.shift) % length
		if i < 0 {
			i += length
		}
		buf[x] = c.ddram[start+i]
	}
	return string(buf)
}
