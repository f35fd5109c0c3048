// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package charlcd is a container for the HD44780 character LCD driver and its
// tooling.
//
// The driver lives in hd44780. lcdsim simulates a panel on an i2c.Bus,
// tinygobus runs the driver on TinyGo buses and cmd/lcdctl drives a panel
// from the command line.
package charlcd
