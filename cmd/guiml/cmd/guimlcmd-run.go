// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wavetermdev/guiml/pkg/termui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the markup application in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// redirectLog points the log package at path, since the terminal UI owns stdout.
func redirectLog(path string) (func(), error) {
	if path == "" {
		log.SetOutput(nopWriter{})
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(fd)
	return func() {
		log.SetOutput(os.Stderr)
		fd.Close()
	}, nil
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	restoreLog, err := redirectLog(Config.LogFile)
	if err != nil {
		return err
	}
	defer restoreLog()
	log.Printf("[guiml] starting %s (v%s)\n", Config.MarkupPath(), GuimlVersion)

	term := termui.MakeTerminal(termui.StdoutSize())
	a, err := buildApp(Config, term)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err = termui.Run(ctx, a.engine, term, termui.Options{Tick: Config.Tick})
	if err != nil {
		log.Printf("[guiml] exited with error: %v\n", err)
	}
	return err
}
