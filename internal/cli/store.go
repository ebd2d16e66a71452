package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/config"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/store"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// storeKinds are the entry kinds a namespace holds.
var storeKinds = []string{store.TreeKey, store.RecordsKey}

// storeCommand groups raw store access for the configured namespace.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Read and write stored trees and records",
		Long: `Read and write stored trees and records.

Each namespace holds two entries: "intent-tree" and "records". Keys are
namespaced as <namespace>:<kind>. The backend and namespace come from the
[store] section of the config.`,
	}

	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

func (c *CLI) storeGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "get [intent-tree|records]",
		Short:     "Print a stored entry",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: storeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(gw *store.Gateway) error {
				data, ok, err := gw.Store.Get(cmd.Context(), gw.Key(args[0]))
				if err != nil {
					return errors.Wrap(errors.ErrCodePersistence, err, "get %s", args[0])
				}
				if !ok {
					return errors.New(errors.ErrCodeNotFound, "no %s stored for %q", args[0], gw.Namespace)
				}
				_, err = c.out.Write(data)
				return err
			})
		},
	}
}

func (c *CLI) storePutCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "put [intent-tree|records] [file]",
		Short:     "Store an entry from a file (- for stdin)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: storeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(gw *store.Gateway) error {
				switch args[0] {
				case store.TreeKey:
					t, err := readTreeArg(args[1])
					if err != nil {
						return err
					}
					if err := gw.SaveTree(ctx, t); err != nil {
						return err
					}
					printSuccess("Stored tree with %d items", t.Len())
				case store.RecordsKey:
					recs, err := readRecords(args[1])
					if err != nil {
						return err
					}
					if err := gw.SaveRecords(ctx, recs); err != nil {
						return err
					}
					printSuccess("Stored %d records", len(recs))
				default:
					return errors.New(errors.ErrCodeInvalidInput, "unknown kind %q", args[0])
				}
				printDetail("Key: %s", gw.Key(args[0]))
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "delete [intent-tree|records]",
		Short:     "Delete a stored entry",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: storeKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(gw *store.Gateway) error {
				if err := gw.Store.Delete(cmd.Context(), gw.Key(args[0])); err != nil {
					return errors.Wrap(errors.ErrCodePersistence, err, "delete %s", args[0])
				}
				printSuccess("Deleted %s", gw.Key(args[0]))
				return nil
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(*store.Gateway) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend == config.BackendMemory || cfg.Store.Backend == config.BackendNull {
		printWarning("The %s backend does not persist between runs", cfg.Store.Backend)
	}
	gw, err := c.openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer gw.Close()
	return fn(gw)
}

// readTreeArg reads a tree from a file, or from stdin for "-".
func readTreeArg(path string) (*tree.Tree, error) {
	if path != "-" {
		return tree.ReadFile(path)
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return tree.Parse(data)
}
