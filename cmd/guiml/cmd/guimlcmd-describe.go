// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wavetermdev/guiml/pkg/components"
	"github.com/wavetermdev/guiml/pkg/engine"
)

var describeCmd = &cobra.Command{
	Use:   "describe [tag]",
	Short: "List the properties a component tag accepts",
	Long:  "List the properties a component tag accepts. Without a tag, list all registered tags.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDescribeCmd,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribeCmd(cmd *cobra.Command, args []string) error {
	registry := engine.NewRegistry()
	if err := components.Register(registry); err != nil {
		return err
	}
	if len(args) == 0 {
		for _, tag := range registry.Tags() {
			WriteStdout("%s\n", tag)
		}
		return nil
	}
	fields, err := registry.Describe(args[0])
	if err != nil {
		return err
	}
	WriteStdout("<%s>\n", args[0])
	for _, field := range fields {
		line := "  " + field.Name + " " + field.Type.String()
		if field.HasDefault() {
			line += " = " + field.Default
		}
		if field.Required {
			line += " (required)"
		}
		WriteStdout("%s\n", line)
	}
	return nil
}
