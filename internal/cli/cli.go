package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/buildinfo"
	"github.com/matzehuels/intentgraph/pkg/config"
	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/extract"
	"github.com/matzehuels/intentgraph/pkg/session"
	"github.com/matzehuels/intentgraph/pkg/store"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which defaults to stdout.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "intentgraph",
		Short: "Intentgraph edits intent trees as node-link graphs",
		Long: `Intentgraph turns an intent tree extracted from user records into a
three-tier node-link graph, lays it out, and applies drag-and-drop
reorganizations (merge, demote, attach) with persistence and rollback.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once. An explicit --config must exist; the
// default location is optional.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath())
	}
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Session Factory
// =============================================================================

// openGateway opens the configured store and wraps it in a gateway.
func (c *CLI) openGateway(ctx context.Context, cfg *config.Config) (*store.Gateway, error) {
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	return store.NewGateway(s, cfg.Store.Namespace, cfg.Store.Backend), nil
}

// newExtractor returns the configured extraction client, or nil when no
// service URL is set.
func (c *CLI) newExtractor(cfg *config.Config) extract.Extractor {
	if !cfg.Extract.Enabled() {
		return nil
	}
	return extract.NewClient(cfg.Extract, c.Logger)
}

// newSession creates a session over gw using the configured layout and drag
// options.
func (c *CLI) newSession(cfg *config.Config, gw *store.Gateway) *session.Session {
	return session.New(session.Options{
		Gateway:   gw,
		Extractor: c.newExtractor(cfg),
		Layout:    cfg.Layout.Options(),
		Drag:      cfg.Drag.Options(),
		MaxDrags:  cfg.Drag.MaxLive,
		Logger:    c.Logger,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// resolveNode finds a node by numeric id or by label.
func resolveNode(f *forest.Forest, ref string) (*forest.Node, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		if n, ok := f.Node(forest.NodeID(id)); ok {
			return n, nil
		}
	}
	if n, ok := f.FindByLabel(ref); ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no node with id or label %q", ref)
}

// output opens path for writing, or returns c.out when path is empty or "-".
func (c *CLI) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return c.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
