// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"github.com/maruel/ansi256"
)

func TestScreen(t *testing.T) {
	bus := New(hd44780.GenericPCF8574T{}, hd44780.LCD16x2, 0)
	dev, err := hd44780.New(bus, hd44780.GenericPCF8574T{}, &hd44780.Opts{Type: hd44780.LCD16x2, Sleep: func(time.Duration) {}})
	if err != nil {
		t.Fatal(err)
	}
	if err = dev.Init(); err != nil {
		t.Fatal(err)
	}
	if err = dev.Print("Hello\x01~\xff"); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	s := NewScreen(&ScreenOpts{W: &buf, Palette: ansi256.Default})
	if err = s.Render(bus); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("Render() expected 4 lines, received %d", n)
	}
	if !strings.Contains(out, "Hello#~?") {
		t.Errorf("Render() output doesn't hold the text: %q", out)
	}
	on := buf.Len()
	buf.Reset()
	if err = dev.SetBacklight(false); err != nil {
		t.Fatal(err)
	}
	if err = s.Render(bus); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 || on == 0 {
		t.Error("Render() wrote nothing")
	}
	buf.Reset()
	if err = s.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m\n" {
		t.Errorf("Halt() wrote %q", buf.String())
	}
	if s.String() != "Screen" {
		t.Errorf("String() received %q", s.String())
	}
}

func TestGlyph(t *testing.T) {
	for b, want := range map[byte]byte{0x00: '#', 0x0f: '#', 0x10: '?', ' ': ' ', 'A': 'A', 0x7f: '?', 0xa5: '?'} {
		if got := glyph(b); got != want {
			t.Errorf("glyph(%#x) expected %q, received %q", b, want, got)
		}
	}
}
