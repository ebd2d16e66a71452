package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it with ctx. The log level is
// debug with --verbose, and otherwise comes from the [log] section of the
// config.
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if cfg, err := c.loadConfig(); err == nil {
			level = cfg.Log.ParsedLevel()
		}
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return preRun(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
