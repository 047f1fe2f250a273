/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alex-boop-chasey/vite-docs/internal/ops"
	"github.com/alex-boop-chasey/vite-docs/pkg/buildinfo"
	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/exitcode"
	"github.com/alex-boop-chasey/vite-docs/pkg/logger"
	"github.com/alex-boop-chasey/vite-docs/pkg/pipeline"
)

// newRootCommand creates a fresh root command so tests get isolated trees
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitedocs",
		Short: "Compile documentation trees into AI-ready plain text",
		Long: `vitedocs walks a documentation tree (VitePress, Markdown, MDX, HTML and
structured config), normalizes every file to plain text and compiles the
result into flat and grouped text files, a run log and an optional archive.

Examples:
   vitedocs compile                      # compile ./docs with vitedocs.yaml settings
   vitedocs compile --root site --dry-run
   vitedocs classify docs/guide/intro.md # show how a path would be treated
   vitedocs version`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringP("config", "c", "", "Config file (default: vitedocs.{yaml,yml,json,toml} in the working directory)")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("vitedocs {{.Version}}\n")

	// Grouped help driven by the command registry
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c.HasParent() {
			c.Println(c.UsageString())
			return
		}
		reg := ops.GetRegistry()
		c.Println(c.Long)
		c.Println()
		for _, group := range ops.Groups {
			c.Println(group.Title() + ":")
			for _, r := range reg.GetCommandsByGroup(group) {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands attaches freshly built subcommands to cmd
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newClassifyCommand())
	cmd.AddCommand(newVersionCommand())
}

var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
	for _, sub := range rootCmd.Commands() {
		group, core := ops.CoreCommands[sub.Name()]
		if !core {
			continue
		}
		if err := ops.RegisterCommand(sub.Name(), group, sub, sub.Short); err != nil {
			panic(err)
		}
	}
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		return code
	}
	return exitcode.Success
}

// exitCodeFor maps run errors onto process exit codes
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, context.Canceled):
		return exitcode.Interrupted
	case errors.Is(err, config.ErrInvalid):
		return exitcode.ConfigError
	case errors.Is(err, pipeline.ErrRootUnreadable):
		return exitcode.SourceError
	case errors.Is(err, pipeline.ErrOutputWrite):
		return exitcode.OutputError
	default:
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger from the persistent flags
func initializeLogger(cmd *cobra.Command) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun := false
	if f := cmd.Flags().Lookup("dry-run"); f != nil {
		dryRun = f.Value.String() == "true"
	}

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevel),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "vitedocs",
		DryRun:    dryRun,
	}
	if err := logger.Initialize(cfg); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// loadConfig reads configuration with cobra flags layered on top
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags(), bindings); err != nil {
		return nil, err
	}
	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(v, configFile)
}

// bindFlags maps config keys onto flags; a flag only wins when it was set
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("no flag %q for config key %s", name, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
