// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/wavetermdev/guiml/pkg/config"
	"github.com/wavetermdev/guiml/pkg/util/logutil"
)

// set by the build
var GuimlVersion = "0.0.0"
var BuildTime = "0"

var (
	rootCmd = &cobra.Command{
		Use:               "guiml",
		Short:             "Run declarative markup applications in the terminal",
		Long:              `guiml renders a markup document of components, styles and bindings into an interactive terminal UI`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

var WrappedStdout io.Writer = os.Stdout
var WrappedStderr io.Writer = os.Stderr
var GuimlExitCode int

var Config config.Config
var envFileArg string

func WriteStderr(fmtStr string, args ...interface{}) {
	WrappedStderr.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func WriteStdout(fmtStr string, args ...interface{}) {
	WrappedStdout.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFileArg, "env-file", config.DefaultEnvFile, "env file with GUIML_* settings")
	flags.StringP("dir", "d", "", "base directory for resource files")
	flags.StringP("markup", "m", "", "markup document to run")
	flags.StringP("style", "s", "", "global stylesheet")
	flags.String("root", "", "root component tag")
	flags.Duration("tick", 0, "frame interval")
	flags.Bool("watch", false, "watch resource files with fsnotify")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", "", "log destination while the terminal UI runs")
}

// loadConfig layers flags that were set explicitly over the env config.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFileArg)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.BaseDir, _ = flags.GetString("dir")
	}
	if flags.Changed("markup") {
		cfg.MarkupFile, _ = flags.GetString("markup")
	}
	if flags.Changed("style") {
		cfg.StyleFile, _ = flags.GetString("style")
	}
	if flags.Changed("root") {
		cfg.RootTag, _ = flags.GetString("root")
	}
	if flags.Changed("tick") {
		cfg.Tick, _ = flags.GetDuration("tick")
	}
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	Config = cfg
	logutil.SetDebug(cfg.Debug)
	return nil
}

func Execute() {
	defer func() {
		r := recover()
		if r != nil {
			WriteStderr("[panic] %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
		os.Exit(GuimlExitCode)
	}()
	err := rootCmd.Execute()
	if err != nil {
		GuimlExitCode = 1
	}
}
