// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version [-v]",
	Short: "Print the version number of guiml",
	RunE:  runVersionCmd,
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "Display full version information")
	rootCmd.AddCommand(versionCmd)
}

func runVersionCmd(cmd *cobra.Command, args []string) error {
	if !versionVerbose {
		WriteStdout("guiml v%s\n", GuimlVersion)
		return nil
	}
	WriteStdout("guiml v%s (%s)\n", GuimlVersion, BuildTime)
	WriteStdout("basedir: %s\n", Config.BaseDir)
	WriteStdout("markup:  %s\n", Config.MarkupPath())
	if Config.StyleFile != "" {
		WriteStdout("style:   %s\n", Config.StylePath())
	}
	return nil
}
