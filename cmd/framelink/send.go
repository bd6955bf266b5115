package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type sendConfig struct {
	rootConfig *rootConfig
	out        io.Writer

	hexPayload string
}

func (c *sendConfig) Exec(ctx context.Context, _ []string) error {
	payload, err := hex.DecodeString(c.hexPayload)
	if err != nil {
		return fmt.Errorf("payload: not valid hex: %w", err)
	}

	e, closer, err := newEngine(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if _, err := e.WriteTX(payload, 0, len(payload)); err != nil {
		statusColor(false).Fprintf(c.out, "write failed: %v\n", err)
		return err
	}
	if err := e.Send(); err != nil {
		statusColor(false).Fprintf(c.out, "send failed: %v (status %s)\n", err, e.Status())
		return err
	}

	statusColor(true).Fprintf(c.out, "sent %d byte payload\n", len(payload))
	return nil
}

func newSendCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := sendConfig{rootConfig: rootConfig, out: out}

	fs := flag.NewFlagSet("framelink send", flag.ExitOnError)
	fs.StringVar(&cfg.hexPayload, "payload", "", "payload bytes, hex-encoded (1-254 bytes)")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "send",
		ShortUsage: "send -payload <hex>",
		ShortHelp:  "Frame and send a single payload.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}
}
