package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/golang/glog"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	defer glog.Flush()

	out := os.Stdout

	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newSendCmd(cfg, out),
		newReceiveCmd(cfg, out),
		newProbeCmd(cfg, out),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		var num int
		for range c {
			num++
			if num >= 3 {
				os.Exit(1)
			}
			cancel()
		}
	}()

	if err := rootCmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, context.Canceled) {
			msg := strings.TrimPrefix(err.Error(), "framelink: ")
			fmt.Fprintf(os.Stderr, "%s: %s\n", rootCmd.Name, msg)
			os.Exit(1)
		} else if cfg.verbose {
			fmt.Fprintf(os.Stderr, "%s: cancelled\n", rootCmd.Name)
		}
	}
}
