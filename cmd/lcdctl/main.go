// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdctl drives an HD44780 character LCD through an I²C backpack.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/GermanBionicSystems/charlcd/hd44780"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("lcdctl", "Drive an HD44780 character LCD through an I²C backpack.")
	debug      = app.Flag("debug", "Turn on debug logging.").Bool()
	configFile = app.Flag("config", "YAML configuration file.").Short('c').String()
	busName    = app.Flag("bus", "I²C bus name, empty for the first bus.").String()
	adapter    = app.Flag("adapter", "Backpack, one of "+strings.Join(hd44780.Adapters(), ", ")+".").String()
	displayArg = app.Flag("display", "Panel size, e.g. 16x2 or 40x4.").String()
	address    = app.Flag("address", "I²C address of the backpack, e.g. 0x27.").String()
	simulate   = app.Flag("simulate", "Drive a simulated panel and draw it on the terminal.").Bool()
	noInit     = app.Flag("no-init", "Don't reset the controllers before the command.").Bool()

	initCmd = app.Command("init", "Reset the controllers and turn the backlight on.")

	printCmd  = app.Command("print", "Print text at a position.")
	printText = printCmd.Arg("text", "Text to print.").Required().String()
	printCol  = printCmd.Flag("col", "0 based column.").Default("0").Int()
	printRow  = printCmd.Flag("row", "0 based row.").Default("0").Int()

	clearCmd = app.Command("clear", "Clear the display.")

	backlightCmd   = app.Command("backlight", "Switch the backlight on or off.")
	backlightState = backlightCmd.Arg("state", "on or off.").Required().Enum("on", "off")

	cursorCmd   = app.Command("cursor", "Set the cursor style.")
	cursorShow  = cursorCmd.Flag("show", "Show the underline cursor.").Bool()
	cursorBlink = cursorCmd.Flag("blink", "Blink the block cursor.").Bool()

	statusCmd  = app.Command("status", "Show the display and its address counter.")
	versionCmd = app.Command("version", "Show current version.")
)

func main() {
	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("%v: Try --help\n", err.Error())
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if *debug {
		log.Info("Enabling debug output...")
		log.SetLevel(log.DebugLevel)
	}

	var c command
	switch cmd {
	case versionCmd.FullCommand():
		showVersion()
		return
	case initCmd.FullCommand():
		c = command{name: "init"}
	case printCmd.FullCommand():
		c = command{name: "print", text: *printText, col: *printCol, row: *printRow}
	case clearCmd.FullCommand():
		c = command{name: "clear"}
	case backlightCmd.FullCommand():
		c = command{name: "backlight", on: *backlightState == "on"}
	case cursorCmd.FullCommand():
		c = command{name: "cursor", show: *cursorShow, blink: *cursorBlink}
	case statusCmd.FullCommand():
		c = command{name: "status"}
	default:
		kingpin.FatalUsage("Unrecognized command")
	}

	conf, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Unable to load the configuration: %v", err)
	}
	err = conf.apply(overrides{
		bus:      *busName,
		adapter:  *adapter,
		display:  *displayArg,
		address:  *address,
		simulate: *simulate,
	})
	if err != nil {
		log.Fatal(err)
	}
	c.reset = !*noInit && c.name != "status"
	c.backlight = *conf.Backlight

	l, err := open(conf, nil)
	if err != nil {
		log.Fatalf("Unable to open the display: %v", err)
	}
	err = run(l, c)
	if cerr := l.Close(); cerr != nil {
		log.Warn("Unable to close the display: ", cerr)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", c.name, err)
	}
}
