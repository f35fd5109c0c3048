// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// sleeps records the settle delays requested by a Dev.
type sleeps []time.Duration

func (s *sleeps) sleep(d time.Duration) {
	*s = append(*s, d)
}

func getLCD(t *testing.T, bus i2c.Bus, a Adapter, kind DisplayType) (*Dev, *sleeps) {
	slept := &sleeps{}
	dev, err := New(bus, a, &Opts{Type: kind, Sleep: slept.sleep})
	if err != nil {
		t.Fatal(err)
	}
	return dev, slept
}

// pcfByte returns the 4 writes sending value on a generic backpack.
func pcfByte(rs, bl bool, value byte) []i2ctest.IO {
	var lines byte
	if rs {
		lines |= 0x01
	}
	if bl {
		lines |= 0x08
	}
	hi := value&0xf0 | lines
	lo := value<<4 | lines
	return []i2ctest.IO{w(hi | 0x04), w(hi), w(lo | 0x04), w(lo)}
}

func TestInit(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// 8 bit function set, three times
			w(0x34), w(0x30),
			w(0x34), w(0x30),
			w(0x34), w(0x30),
			// 4 bit mode
			w(0x24), w(0x20),
			// function set 0x28
			w(0x24), w(0x20), w(0x84), w(0x80),
			// display control 0x0C
			w(0x04), w(0x00), w(0xc4), w(0xc0),
			// entry mode 0x06
			w(0x04), w(0x00), w(0x64), w(0x60),
			// clear
			w(0x04), w(0x00), w(0x14), w(0x10),
			// home
			w(0x04), w(0x00), w(0x24), w(0x20),
			// backlight on, data lines left as they were
			w(0x28),
		},
		DontPanic: true,
	}
	dev, slept := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	if dev.d.Addr != 0x27 {
		t.Errorf("New() expected address 0x27, received %#x", dev.d.Addr)
	}
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
	want := sleeps{
		5 * time.Millisecond, 5 * time.Millisecond, 150 * time.Microsecond,
		39 * time.Microsecond, 39 * time.Microsecond, 39 * time.Microsecond,
		2 * time.Millisecond, 2 * time.Millisecond,
	}
	if !slices.Equal(*slept, want) {
		t.Errorf("Init() delays expected %v, received %v", want, *slept)
	}
	if dev.function[0] != 0x08 || dev.control[0] != 0x04 || dev.mode[0] != 0x02 {
		t.Errorf("Init() registers function=%#x control=%#x mode=%#x", dev.function[0], dev.control[0], dev.mode[0])
	}
	if !dev.BacklightOn() {
		t.Error("Init() left the backlight off")
	}
	if dev.ActiveController() != 0 {
		t.Errorf("Init() active controller %d", dev.ActiveController())
	}
}

// mcpNibble returns the 2 writes latching n on an Adafruit backpack.
func mcpNibble(rs, bl bool, n byte) []i2ctest.IO {
	v := (n & 0x0f) << 3
	if rs {
		v |= 0x02
	}
	if bl {
		v |= 0x80
	}
	return []i2ctest.IO{
		{Addr: 0x20, W: []byte{0x09, v | 0x04}},
		{Addr: 0x20, W: []byte{0x09, v}},
	}
}

func TestInitAdafruit(t *testing.T) {
	ops := []i2ctest.IO{{Addr: 0x20, W: []byte{0x00, 0x00}}}
	for _, n := range []byte{0x3, 0x3, 0x3, 0x2} {
		ops = append(ops, mcpNibble(false, false, n)...)
	}
	for _, cmd := range []byte{0x28, 0x0c, 0x06, 0x01, 0x02} {
		ops = append(ops, mcpNibble(false, false, cmd>>4)...)
		ops = append(ops, mcpNibble(false, false, cmd)...)
	}
	ops = append(ops, i2ctest.IO{Addr: 0x20, W: []byte{0x09, 0x80 | 0x2<<3}})
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, _ := getLCD(t, bus, AdafruitI2CBackpack{}, LCD16x2)
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

// dualNibble returns the 2 writes latching n through enable line e of a dual
// backpack with RS low and the backlight off.
func dualNibble(e, n byte) []i2ctest.IO {
	return []i2ctest.IO{w(n<<4 | e), w(n << 4)}
}

func TestInitDual(t *testing.T) {
	ops := []i2ctest.IO{
		// controller 0, E1 on bit 2
		w(0x34), w(0x30),
		w(0x34), w(0x30),
		w(0x34), w(0x30),
		w(0x24), w(0x20),
		w(0x24), w(0x20), w(0x84), w(0x80),
		w(0x04), w(0x00), w(0xc4), w(0xc0),
		w(0x04), w(0x00), w(0x64), w(0x60),
		w(0x04), w(0x00), w(0x14), w(0x10),
		w(0x04), w(0x00), w(0x24), w(0x20),
		// controller 1, E2 on bit 1: reset handshake
		w(0x32), w(0x30),
		w(0x32), w(0x30),
		w(0x32), w(0x30),
		w(0x22), w(0x20),
		// function set 0x28
		w(0x22), w(0x20), w(0x82), w(0x80),
	}
	for _, cmd := range []byte{0x0c, 0x06, 0x01, 0x02} {
		ops = append(ops, dualNibble(0x02, cmd>>4)...)
		ops = append(ops, dualNibble(0x02, cmd&0x0f)...)
	}
	// backlight on
	ops = append(ops, w(0x28))
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, slept := getLCD(t, bus, DualPCF8574T{}, LCD40x4)
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
	if len(*slept) != 16 {
		t.Errorf("Init() expected 16 delays, received %d", len(*slept))
	}
	for c := range MaxControllers {
		if dev.function[c] != 0x08 || dev.control[c] != 0x04 || dev.mode[c] != 0x02 {
			t.Errorf("Init() controller %d registers function=%#x control=%#x mode=%#x", c, dev.function[c], dev.control[c], dev.mode[c])
		}
	}
}

func TestInitUnsupported(t *testing.T) {
	tests := []struct {
		a    Adapter
		kind DisplayType
	}{
		{GenericPCF8574T{}, LCD40x4},
		{AdafruitI2CBackpack{}, LCD40x4},
		{DualPCF8574T{}, LCD20x4},
	}
	for _, tc := range tests {
		bus := &i2ctest.Playback{DontPanic: true}
		dev, _ := getLCD(t, bus, tc.a, tc.kind)
		if err := dev.Init(); !errors.Is(err, ErrUnsupportedDisplayType) {
			t.Errorf("%s Init(%s) expected ErrUnsupportedDisplayType, received %v", tc.a, tc.kind, err)
		}
		if bus.Count != 0 {
			t.Errorf("%s Init(%s) sent %d transactions", tc.a, tc.kind, bus.Count)
		}
	}
	if _, err := New(&i2ctest.Playback{}, GenericPCF8574T{}, &Opts{Type: DisplayType(9)}); !errors.Is(err, ErrUnsupportedDisplayType) {
		t.Errorf("New() with unknown type expected ErrUnsupportedDisplayType, received %v", err)
	}
}

func TestPrint(t *testing.T) {
	var ops []i2ctest.IO
	for _, c := range []byte("hello") {
		ops = append(ops, pcfByte(true, false, c)...)
	}
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, slept := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	if err := dev.Print("hello"); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
	if ops[0].W[0] != 0x65 || ops[1].W[0] != 0x61 || ops[2].W[0] != 0x85 || ops[3].W[0] != 0x81 {
		t.Errorf("'h' encoded as %#x %#x %#x %#x", ops[0].W, ops[1].W, ops[2].W, ops[3].W)
	}
	if len(*slept) != 5 || (*slept)[0] != 43*time.Microsecond {
		t.Errorf("Print() delays %v", *slept)
	}
}

func TestSetCursorDual(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// 0xD4 on controller 0
			w(0xd4), w(0xd0), w(0x44), w(0x40),
			// 0x8A on controller 1
			w(0x82), w(0x80), w(0xa2), w(0xa0),
		},
		DontPanic: true,
	}
	dev, _ := getLCD(t, bus, DualPCF8574T{}, LCD40x4)
	if err := dev.SetCursor(20, 1); err != nil {
		t.Fatal(err)
	}
	if dev.ActiveController() != 0 {
		t.Errorf("SetCursor(20, 1) active controller %d", dev.ActiveController())
	}
	if err := dev.SetCursor(10, 2); err != nil {
		t.Fatal(err)
	}
	if dev.ActiveController() != 1 {
		t.Errorf("SetCursor(10, 2) active controller %d", dev.ActiveController())
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestSetCursorRange(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	tests := []struct {
		col, row int
		err      error
	}{
		{0, 2, ErrRowOutOfRange},
		{0, -1, ErrRowOutOfRange},
		{16, 0, ErrColumnOutOfRange},
		{-1, 1, ErrColumnOutOfRange},
	}
	for _, tc := range tests {
		if err := dev.SetCursor(tc.col, tc.row); !errors.Is(err, tc.err) {
			t.Errorf("SetCursor(%d, %d) expected %v, received %v", tc.col, tc.row, tc.err, err)
		}
	}
	if bus.Count != 0 {
		t.Errorf("SetCursor() out of range sent %d transactions", bus.Count)
	}
}

func TestRowOffsets(t *testing.T) {
	var ops []i2ctest.IO
	for _, addr := range []byte{0x80 + 0x00, 0x80 + 0x40 + 3, 0x80 + 0x14 + 5, 0x80 + 0x54 + 19} {
		ops = append(ops, pcfByte(false, false, addr)...)
	}
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD20x4)
	for row, col := range []int{0, 3, 5, 19} {
		if err := dev.SetCursor(col, row); err != nil {
			t.Fatal(err)
		}
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestCursorActiveController(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, _ := getLCD(t, bus, DualPCF8574T{}, LCD40x4)
	dev.control = [MaxControllers]byte{displayOn, displayOn}
	if err := dev.SetCursor(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := dev.ShowCursor(true); err != nil {
		t.Fatal(err)
	}
	if dev.control[0] != displayOn || dev.control[1] != displayOn|cursorOn {
		t.Errorf("ShowCursor() control registers %#x %#x", dev.control[0], dev.control[1])
	}
	if err := dev.BlinkCursor(true); err != nil {
		t.Fatal(err)
	}
	if dev.control[0] != displayOn || dev.control[1] != displayOn|cursorOn|blinkOn {
		t.Errorf("BlinkCursor() control registers %#x %#x", dev.control[0], dev.control[1])
	}
	// Moving to controller 0 and showing the cursor there turns both cursors
	// off on 1.
	if err := dev.SetCursor(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := dev.ShowCursor(true); err != nil {
		t.Fatal(err)
	}
	if dev.control[0] != displayOn|cursorOn || dev.control[1] != displayOn {
		t.Errorf("ShowCursor() control registers %#x %#x", dev.control[0], dev.control[1])
	}
	if err := dev.ShowDisplay(false); err != nil {
		t.Fatal(err)
	}
	if dev.control[0]&displayOn != 0 || dev.control[1]&displayOn != 0 {
		t.Errorf("ShowDisplay(false) control registers %#x %#x", dev.control[0], dev.control[1])
	}
}

func TestEntryMode(t *testing.T) {
	var ops []i2ctest.IO
	for _, cmd := range []byte{0x04, 0x06, 0x07, 0x06} {
		ops = append(ops, pcfByte(false, false, cmd)...)
	}
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	dev.mode[0] = entryLeft
	if err := dev.RightToLeft(); err != nil {
		t.Fatal(err)
	}
	if err := dev.LeftToRight(); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetAutoScroll(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.AutoScroll(false); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestScrollAndCreateChar(t *testing.T) {
	var ops []i2ctest.IO
	ops = append(ops, pcfByte(false, false, 0x18)...)
	ops = append(ops, pcfByte(false, false, 0x1c)...)
	// CGRAM slot 3
	ops = append(ops, pcfByte(false, false, 0x40|3<<3)...)
	glyph := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	for _, row := range glyph {
		ops = append(ops, pcfByte(true, false, row)...)
	}
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	if err := dev.ScrollLeft(); err != nil {
		t.Fatal(err)
	}
	if err := dev.ScrollRight(); err != nil {
		t.Fatal(err)
	}
	if err := dev.CreateChar(11, glyph); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestBadControllerID(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	for _, err := range []error{
		dev.ClearController(1),
		dev.HomeController(-1),
		dev.PrintController(1, "x"),
	} {
		if !errors.Is(err, ErrBadControllerID) {
			t.Errorf("expected ErrBadControllerID, received %v", err)
		}
	}
	if bus.Count != 0 {
		t.Errorf("sent %d transactions", bus.Count)
	}
}

func TestHome(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, slept := getLCD(t, bus, DualPCF8574T{}, LCD40x4)
	if err := dev.SetCursor(4, 3); err != nil {
		t.Fatal(err)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	if dev.ActiveController() != 0 {
		t.Errorf("Home() active controller %d", dev.ActiveController())
	}
	// Only controller 0 is homed.
	home := bus.Ops[4:]
	if len(home) != 4 || home[0].W[0] != 0x04 || home[2].W[0] != 0x24 {
		t.Errorf("Home() writes %v", home)
	}
	if last := (*slept)[len(*slept)-1]; last != 2*time.Millisecond {
		t.Errorf("Home() delay %v", last)
	}
}

func TestReadAddressCounter(t *testing.T) {
	var ops []i2ctest.IO
	ops = append(ops, busyPoll(0b0010_0110)...)
	ops = append(ops,
		w(0b1111_0010),
		w(0b1111_0110),
		r(0b1101_0110), // busy flag set again
		w(0b1111_0010),
		w(0b1111_0110),
		r(0b0100_0110),
		w(0b1111_0010),
	)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	ac, err := dev.ReadAddressCounter()
	if err != nil {
		t.Fatal(err)
	}
	if ac != 0x54 {
		t.Errorf("ReadAddressCounter() expected 0x54, received %#x", ac)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
	if dev.lines != (Signals{}) {
		t.Errorf("ReadAddressCounter() changed the line state to %+v", dev.lines)
	}
}

func TestReadDeviceDataNotSupported(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, _ := getLCD(t, bus, AdafruitI2CBackpack{}, LCD16x2)
	if err := dev.ReadDeviceData(make([]byte, 4)); !errors.Is(err, ErrReadNotSupported) {
		t.Errorf("ReadDeviceData() expected ErrReadNotSupported, received %v", err)
	}
	if !errors.Is(ErrReadNotSupported, display.ErrNotImplemented) {
		t.Error("ErrReadNotSupported should wrap display.ErrNotImplemented")
	}
	if _, err := dev.Busy(); !errors.Is(err, ErrReadNotSupported) {
		t.Errorf("Busy() expected ErrReadNotSupported, received %v", err)
	}
}

func TestBacklight(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			w(0x08),
			w(0x00),
			w(0x08),
		},
		DontPanic: true,
	}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	if err := dev.SetBacklight(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if err := dev.Backlight(0xff); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

// failingBus fails every transaction from the failAt'th on.
type failingBus struct {
	i2ctest.Record
	failAt int
}

var errBus = conntest.Errorf("bus failure")

func (f *failingBus) Tx(addr uint16, w, r []byte) error {
	if len(f.Ops) >= f.failAt {
		return errBus
	}
	return f.Record.Tx(addr, w, r)
}

func TestBusErrorStopsFanOut(t *testing.T) {
	bus := &failingBus{failAt: 0}
	dev, _ := getLCD(t, bus, DualPCF8574T{}, LCD40x4)
	err := dev.Clear()
	if !errors.Is(err, errBus) {
		t.Fatalf("Clear() expected the bus error, received %v", err)
	}
	if !strings.HasPrefix(err.Error(), "hd44780: ") {
		t.Errorf("Clear() error not wrapped: %v", err)
	}
	if len(bus.Ops) != 0 {
		t.Errorf("Clear() continued after the failure: %d writes", len(bus.Ops))
	}
	bus.failAt = 100
	if err := dev.ShowDisplay(true); err != nil {
		t.Fatal(err)
	}
	bus.failAt = len(bus.Ops) + 4
	if err := dev.ShowCursor(true); !errors.Is(err, errBus) {
		t.Fatalf("ShowCursor() expected the bus error, received %v", err)
	}
	if dev.control[0] != displayOn|cursorOn {
		t.Errorf("controller 0 expected %#x, received %#x", displayOn|cursorOn, dev.control[0])
	}
	if dev.control[1] != displayOn {
		t.Errorf("controller 1 expected %#x, received %#x", displayOn, dev.control[1])
	}
}

func TestWrite(t *testing.T) {
	bus := &failingBus{failAt: 3 * 4}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	n, err := dev.WriteString("hello")
	if n != 3 || !errors.Is(err, errBus) {
		t.Errorf("WriteString() expected 3 and the bus error, received %d, %v", n, err)
	}
}

func TestCursorModes(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, _ := getLCD(t, bus, GenericPCF8574T{}, LCD16x2)
	if err := dev.Cursor(display.CursorUnderline, display.CursorBlink); err != nil {
		t.Fatal(err)
	}
	if dev.control[0] != cursorOn|blinkOn {
		t.Errorf("Cursor() control register %#x", dev.control[0])
	}
	if err := dev.Cursor(display.CursorOff); err != nil {
		t.Fatal(err)
	}
	if dev.control[0] != 0 {
		t.Errorf("Cursor(CursorOff) control register %#x", dev.control[0])
	}
	if err := dev.Cursor(display.CursorBlink + 1); !errors.Is(err, display.ErrInvalidCommand) {
		t.Errorf("Cursor() invalid mode returned %v", err)
	}
	if err := dev.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up) returned %v", err)
	}
	if err := dev.Move(display.Down + 1); !errors.Is(err, display.ErrInvalidCommand) {
		t.Errorf("Move() invalid direction returned %v", err)
	}
	if err := dev.MoveTo(0, 1); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("MoveTo(0, 1) returned %v", err)
	}
	if s := dev.String(); s != "HD44780::GenericPCF8574T@0x27 - Rows: 2, Cols: 16" {
		t.Errorf("String() received %q", s)
	}
}
