// hagldemo runs the hagl graphics demo on a host display.
//
// Usage:
//
//	hagldemo [flags] <command> [flags]
//
// Commands:
//
//	run        Cycle through the drawing demos until interrupted
//	snapshot   Render every demo once and save BMP files
//	list       Print the demo sequence
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagostin/hagl-demo/pkg/logx"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:          filepath.Base(os.Args[0]),
	Short:        "hagl graphics library demo",
	Long:         "hagl graphics library demo: draws random primitives and reports their rate",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

var (
	debugFlag     bool
	logLevelFlag  string
	logFormatFlag string
	logFileFlag   string
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, `debug`, `d`, false, `print error stacks and log at debug level`)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, `log-level`, `info`, `log level (debug, info, warn, error)`)
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, `log-format`, `text`, `log format (text, json)`)
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, `log-file`, `l`, ``, `log file`)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the logger for a command. silent discards the log when no
// log file is set, for commands that take over the terminal.
func newLogger(silent bool) (*slog.Logger, func(), error) {
	level := logLevelFlag
	if debugFlag {
		level = "debug"
	}
	logger, closer, err := logx.New(logx.Options{
		Level:  level,
		Format: logFormatFlag,
		File:   logFileFlag,
		Silent: silent,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = closer.Close() }, nil
}

// run executes fn and reports its error, with a stack trace when debugging.
func run(fn func() error) {
	err := fn()
	if err == nil {
		return
	}
	if stackFramer, ok := err.(interface{ ErrorStack() string }); debugFlag && ok {
		fmt.Fprintln(os.Stderr, stackFramer.ErrorStack())
	} else {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}
