package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose bool
	iface   string // "usb" or "loop"

	startByte     uint
	delimiter     uint
	crcWidth      uint
	crcPoly       string
	crcInit       string
	crcFinalXOR   string
	timeoutMicros uint

	vendorID  string
	productID string
	resetPin  string
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.iface, "i", "usb", "transport: usb or loop")
	fs.UintVar(&c.startByte, "start-byte", 129, "frame start sentinel byte")
	fs.UintVar(&c.delimiter, "delim", 0, "COBS delimiter byte")
	fs.UintVar(&c.crcWidth, "crc-width", 16, "CRC width in bits: 8, 16, or 32")
	fs.StringVar(&c.crcPoly, "crc-poly", "0x1021", "forward CRC polynomial")
	fs.StringVar(&c.crcInit, "crc-init", "0xFFFF", "CRC initial register value")
	fs.StringVar(&c.crcFinalXOR, "crc-xorout", "0x0000", "CRC final XOR value")
	fs.UintVar(&c.timeoutMicros, "timeout-us", 20000, "inter-byte reception timeout, microseconds")
	fs.StringVar(&c.vendorID, "vid", "0x0000", "USB vendor ID (usb transport only)")
	fs.StringVar(&c.productID, "pid", "0x0000", "USB product ID (usb transport only)")
	fs.StringVar(&c.resetPin, "reset-pin", "", "optional GPIO pin name to pulse before opening the USB device")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return uint32(v), nil
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return uint16(v), nil
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("framelink", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "framelink",
		ShortUsage: "framelink [flags] <subcommand>",
		ShortHelp:  "Send and receive COBS+CRC framed packets over a point-to-point serial link.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}, &cfg
}
