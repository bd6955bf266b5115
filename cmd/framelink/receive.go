package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type receiveConfig struct {
	rootConfig *rootConfig
	out        io.Writer

	count uint
}

func (c *receiveConfig) Exec(ctx context.Context, _ []string) error {
	e, closer, err := newEngine(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	n := c.count
	if n == 0 {
		n = 1
	}
	for i := uint(0); i < n; i++ {
		if err := e.Receive(); err != nil {
			statusColor(false).Fprintf(c.out, "receive failed: %v (status %s)\n", err, e.Status())
			return err
		}

		payload := make([]byte, e.RXPayloadSize())
		if _, err := e.ReadRX(payload, 0, len(payload)); err != nil {
			return fmt.Errorf("read decoded payload: %w", err)
		}
		statusColor(true).Fprintf(c.out, "received %d bytes: %s\n", len(payload), hex.EncodeToString(payload))
	}
	return nil
}

func newReceiveCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := receiveConfig{rootConfig: rootConfig, out: out}

	fs := flag.NewFlagSet("framelink receive", flag.ExitOnError)
	fs.UintVar(&cfg.count, "count", 1, "number of frames to receive before exiting")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "receive",
		ShortUsage: "receive [-count N]",
		ShortHelp:  "Receive and validate one or more framed payloads.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
