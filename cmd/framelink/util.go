package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/golang/glog"

	"github.com/sparques/framelink"
	"github.com/sparques/framelink/transport/looptransport"
	"github.com/sparques/framelink/transport/usbtransport"
)

func init() {
	// glog defaults to writing only to on-disk log files. This is a
	// foreground CLI, not a daemon, so route it to stderr unconditionally —
	// ffcli's per-command FlagSets never parse flag.CommandLine, so there is
	// no other way for a user to reach glog's own -logtostderr flag.
	flag.Set("logtostderr", "true")
}

// glogLogger adapts glog's V(2) verbose channel to framelink.Logger.
// newEngine bridges our own -v into glog's verbosity level before
// constructing this, since glog.V(2) otherwise always evaluates against
// glog's flag.CommandLine default of 0.
type glogLogger struct{}

func (glogLogger) Printf(format string, args ...any) {
	glog.V(2).Infof(format, args...)
}

// newEngine builds a framelink.Engine over the interface named in c.iface.
// On success the returned io.Closer is never nil: the "loop" transport has
// nothing to close and gets a no-op closer, for symmetry with the usb
// transport's Close.
func newEngine(c *rootConfig) (*framelink.Engine, io.Closer, error) {
	if c.verbose {
		flag.Set("v", "2")
	}

	crcParams, err := parseCRCParams(c)
	if err != nil {
		return nil, nil, err
	}

	opts := []framelink.Option{
		framelink.WithStartByte(byte(c.startByte)),
		framelink.WithDelimiterByte(byte(c.delimiter)),
		framelink.WithCRC(crcParams),
		framelink.WithTimeout(uint64(c.timeoutMicros)),
		framelink.WithLogger(glogLogger{}),
	}

	switch c.iface {
	case "loop":
		tr := looptransport.New()
		return framelink.NewEngine(tr, opts...), nopCloser{}, nil
	case "usb":
		vid, err := parseUint16(c.vendorID)
		if err != nil {
			return nil, nil, fmt.Errorf("vid: %w", err)
		}
		pid, err := parseUint16(c.productID)
		if err != nil {
			return nil, nil, fmt.Errorf("pid: %w", err)
		}
		if c.resetPin != "" {
			reset, err := usbtransport.OpenResetLine(c.resetPin)
			if err != nil {
				return nil, nil, err
			}
			if err := reset.Pulse(); err != nil {
				return nil, nil, err
			}
		}
		tr, err := usbtransport.Open(usbtransport.Config{VendorID: vid, ProductID: pid})
		if err != nil {
			return nil, nil, err
		}
		return framelink.NewEngine(tr, opts...), tr, nil
	default:
		return nil, nil, fmt.Errorf("unknown interface %q: want usb or loop", c.iface)
	}
}

func parseCRCParams(c *rootConfig) (framelink.CRCParams, error) {
	poly, err := parseUint32(c.crcPoly)
	if err != nil {
		return framelink.CRCParams{}, fmt.Errorf("crc-poly: %w", err)
	}
	init, err := parseUint32(c.crcInit)
	if err != nil {
		return framelink.CRCParams{}, fmt.Errorf("crc-init: %w", err)
	}
	xorout, err := parseUint32(c.crcFinalXOR)
	if err != nil {
		return framelink.CRCParams{}, fmt.Errorf("crc-xorout: %w", err)
	}

	var width framelink.CRCWidth
	switch c.crcWidth {
	case 8:
		width = framelink.CRCWidth8
	case 16:
		width = framelink.CRCWidth16
	case 32:
		width = framelink.CRCWidth32
	default:
		return framelink.CRCParams{}, fmt.Errorf("crc-width: must be 8, 16, or 32, got %d", c.crcWidth)
	}

	return framelink.CRCParams{Width: width, Poly: poly, Init: init, FinalXOR: xorout}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// statusColor picks green for success and red for any nonzero status, for
// the short human-readable summary line printed by send/receive/probe.
func statusColor(ok bool) *color.Color {
	if ok {
		return color.New(color.FgGreen)
	}
	return color.New(color.FgRed)
}
