// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	"gopkg.in/yaml.v3"
)

const defaultAdapter = "generic-pcf8574t"

// Config describes the display lcdctl talks to.
type Config struct {
	// Bus is the periph I²C bus name. Empty selects the first bus.
	Bus     string              `yaml:"bus"`
	Adapter string              `yaml:"adapter"`
	Display hd44780.DisplayType `yaml:"display"`
	// Address 0 selects the adapter default.
	Address  uint16 `yaml:"address"`
	Simulate bool   `yaml:"simulate"`
	// Backlight is the state applied before every command but status and
	// backlight.
	Backlight *bool `yaml:"backlight"`
}

func parseConfig(content []byte) (*Config, error) {
	c := &Config{}
	err := yaml.Unmarshal(content, c)
	if err != nil {
		return nil, err
	}
	if c.Adapter == "" {
		c.Adapter = defaultAdapter
	}
	if c.Backlight == nil {
		on := true
		c.Backlight = &on
	}
	return c, c.validate()
}

func loadConfig(path string) (*Config, error) {
	if path == "" {
		return parseConfig(nil)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := parseConfig(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Address > 0x7f {
		return fmt.Errorf("address %#x is not a 7 bit I²C address", c.Address)
	}
	adapter, err := hd44780.ParseAdapter(c.Adapter)
	if err != nil {
		return err
	}
	if !adapter.IsCompatible(c.Display) {
		return fmt.Errorf("adapter %s can't drive a %s display", adapter, c.Display)
	}
	return nil
}

// overrides holds the command line flags. Empty values keep the
// configuration file value.
type overrides struct {
	bus      string
	adapter  string
	display  string
	address  string
	simulate bool
}

func (c *Config) apply(o overrides) error {
	if o.bus != "" {
		c.Bus = o.bus
	}
	if o.adapter != "" {
		c.Adapter = o.adapter
	}
	if o.display != "" {
		t, err := hd44780.ParseDisplayType(o.display)
		if err != nil {
			return err
		}
		c.Display = t
	}
	if o.address != "" {
		addr, err := strconv.ParseUint(o.address, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", o.address, err)
		}
		c.Address = uint16(addr)
	}
	if o.simulate {
		c.Simulate = true
	}
	return c.validate()
}
