// Package commands provides the CLI commands for livecfg.
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/livecfg/livecfg/internal/jsontext"
	"github.com/livecfg/livecfg/internal/logging"
	"github.com/livecfg/livecfg/internal/paths"
	"github.com/livecfg/livecfg/internal/store"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	configFile string
	logLevel   string
	prettyLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "livecfg",
	Short: "livecfg - reactive JSONC configuration files",
	Long: `livecfg reads and edits JSONC configuration files while preserving
their comments and formatting.

Run 'livecfg get' to inspect a file, 'livecfg set' to edit one, or
'livecfg watch' to follow a file as it changes.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Output: os.Stderr,
			Pretty: prettyLogs,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: XDG config path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "Human-readable log output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("livecfg %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(translateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveConfigFile returns the config path from the flag or the XDG default.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return paths.Get().ConfigFile()
}

// openStore opens the configured file with an empty template.
func openStore(opts ...store.Option) (*store.Store, error) {
	return store.New(resolveConfigFile(), nil, opts...)
}

// parsePath splits a dotted path expression into steps. Segments that parse
// as non-negative integers address array elements.
func parsePath(expr string) (jsontext.Path, error) {
	if expr == "" {
		return nil, nil
	}
	var p jsontext.Path
	for _, seg := range strings.Split(expr, ".") {
		if seg == "" {
			return nil, fmt.Errorf("empty segment in path %q", expr)
		}
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			p = append(p, jsontext.Index(n))
			continue
		}
		p = append(p, jsontext.Key(seg))
	}
	return p, nil
}

// parseValue interprets a command-line argument as JSON where possible and
// falls back to a plain string, so `set debug true` and `set name foo` both
// do the obvious thing.
func parseValue(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err == nil {
		return v
	}
	return arg
}

// renderValue prints a value the way it would appear in the file.
func renderValue(v any) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
