// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wavetermdev/guiml/pkg/config"
	"github.com/wavetermdev/guiml/pkg/termui"
)

var treeWidth int
var treeHeight int
var treeScreen bool

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Run one frame and print the component tree",
	Args:  cobra.NoArgs,
	RunE:  runTreeCmd,
}

func init() {
	treeCmd.Flags().IntVar(&treeWidth, "width", termui.DefaultWidth, "terminal width")
	treeCmd.Flags().IntVar(&treeHeight, "height", termui.DefaultHeight, "terminal height")
	treeCmd.Flags().BoolVar(&treeScreen, "screen", false, "also print the drawn screen")
	rootCmd.AddCommand(treeCmd)
}

func runTreeCmd(cmd *cobra.Command, args []string) error {
	return printTree(Config, treeWidth, treeHeight, treeScreen)
}

// printTree renders the application once on an offscreen terminal.
// Frame errors are reported after the tree since a partial tree is still useful.
func printTree(cfg config.Config, width int, height int, screen bool) error {
	term := termui.MakeTerminal(width, height)
	a, err := buildApp(cfg, term)
	if err != nil {
		return err
	}
	defer a.close()
	frameErr := a.engine.Frame(config.DefaultTick.Seconds())
	if err := a.engine.Dump(WrappedStdout); err != nil {
		return err
	}
	if screen {
		cells := term.Cells()
		_, height := cells.Size()
		for y := 0; y < int(height); y++ {
			WriteStdout("%s\n", cells.Text(y))
		}
	}
	return frameErr
}
