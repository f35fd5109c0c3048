// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"strings"
)

// DisplayType identifies a character LCD panel size.
type DisplayType int

const (
	LCD16x2 DisplayType = iota
	LCD16x4
	LCD20x2
	LCD20x4
	LCD8x2
	LCD40x2
	// LCD40x4 panels are built from two HD44780 controllers, each one
	// driving two of the rows.
	LCD40x4
)

// Geometry describes the visible area of a panel and where each row starts
// in the controller's DDRAM.
//
// RowOffsets always has four entries. For panels with fewer rows the unused
// entries point off screen. On two controller panels the offsets are indexed
// by the row local to the controller.
type Geometry struct {
	Rows       int
	Cols       int
	RowOffsets [4]byte
}

var geometries = [...]Geometry{
	LCD16x2: {Rows: 2, Cols: 16, RowOffsets: [4]byte{0x00, 0x40, 0x10, 0x50}},
	LCD16x4: {Rows: 4, Cols: 16, RowOffsets: [4]byte{0x00, 0x40, 0x10, 0x50}},
	LCD20x2: {Rows: 2, Cols: 20, RowOffsets: [4]byte{0x00, 0x40, 0x00, 0x40}},
	LCD20x4: {Rows: 4, Cols: 20, RowOffsets: [4]byte{0x00, 0x40, 0x14, 0x54}},
	LCD8x2:  {Rows: 2, Cols: 8, RowOffsets: [4]byte{0x00, 0x40, 0x00, 0x40}},
	LCD40x2: {Rows: 2, Cols: 40, RowOffsets: [4]byte{0x00, 0x40, 0x00, 0x40}},
	LCD40x4: {Rows: 4, Cols: 40, RowOffsets: [4]byte{0x00, 0x40, 0x00, 0x40}},
}

// DisplayTypes returns every known panel size.
func DisplayTypes() []DisplayType {
	types := make([]DisplayType, len(geometries))
	for ix := range geometries {
		types[ix] = DisplayType(ix)
	}
	return types
}

func (t DisplayType) valid() bool {
	return t >= 0 && int(t) < len(geometries)
}

// Geometry returns the rows, columns and row offsets of the panel. An
// unknown type returns the zero Geometry.
func (t DisplayType) Geometry() Geometry {
	if !t.valid() {
		return Geometry{}
	}
	return geometries[t]
}

// String returns the size as "colsxrows", e.g. "16x2".
func (t DisplayType) String() string {
	if !t.valid() {
		return fmt.Sprintf("DisplayType(%d)", int(t))
	}
	g := geometries[t]
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// ParseDisplayType converts a "colsxrows" string like "20x4" to a
// DisplayType.
func ParseDisplayType(s string) (DisplayType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, t := range DisplayTypes() {
		if t.String() == want {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%s: unknown display type %q", packageName, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t DisplayType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%s: unknown display type %d", packageName, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DisplayType) UnmarshalText(text []byte) error {
	v, err := ParseDisplayType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
