// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// ScreenOpts represents the options available for the console renderer.
type ScreenOpts struct {
	// W receives the frames. nil selects stdout.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Screen draws a simulated panel on the console using ANSI color codes.
type Screen struct {
	w       io.Writer
	palette ansi256.Palette

	buf bytes.Buffer
}

var (
	backlightOn  = color.NRGBA{0x40, 0xa0, 0xff, 0xff}
	backlightOff = color.NRGBA{0x18, 0x28, 0x30, 0xff}
)

// NewScreen returns a Screen that writes to the console.
func NewScreen(opts *ScreenOpts) *Screen {
	if opts == nil {
		opts = &ScreenOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Screen{w: w, palette: *p}
}

func (s *Screen) String() string {
	return "Screen"
}

// Halt resets the console colors.
func (s *Screen) Halt() error {
	_, err := s.w.Write([]byte("\033[0m\n"))
	return err
}

// Render draws the rows of b framed by the backlight color.
func (s *Screen) Render(b *Bus) error {
	lines := b.Lines()
	c := backlightOff
	if b.Backlight() {
		c = backlightOn
	}
	block := s.palette.Block(c)
	s.buf.Reset()
	s.border(block, b.geometry.Cols+2)
	for _, l := range lines {
		_, _ = s.buf.WriteString(block)
		for i := 0; i < len(l); i++ {
			_ = s.buf.WriteByte(glyph(l[i]))
		}
		_, _ = s.buf.WriteString(block)
		_, _ = s.buf.WriteString("\033[0m\n")
	}
	s.border(block, b.geometry.Cols+2)
	_, err := s.buf.WriteTo(s.w)
	return err
}

func (s *Screen) border(block string, n int) {
	for range n {
		_, _ = s.buf.WriteString(block)
	}
	_, _ = s.buf.WriteString("\033[0m\n")
}

// glyph maps a character code to something the console can print. Codes 0
// to 15 select CGRAM glyphs.
func glyph(b byte) byte {
	switch {
	case b < 0x10:
		return '#'
	case b < 0x20 || b > 0x7e:
		return '?'
	}
	return b
}
