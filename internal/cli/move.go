package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
	pkgio "github.com/matzehuels/intentgraph/pkg/io"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// moveCommand applies a reorganization between two nodes of a tree file.
func (c *CLI) moveCommand() *cobra.Command {
	var (
		output    string
		opName    string
		confirmed []string
	)

	cmd := &cobra.Command{
		Use:   "move [tree.json] [source] [target]",
		Short: "Drop one node onto another and apply the chosen operation",
		Long: `Drop one node onto another and apply the chosen operation.

Source and target are node ids or labels. The operations allowed depend on
the node types:

  high-intent → high-intent   merge, demote-as-child
  low-intent  → low-intent    merge
  low-intent  → high-intent   attach
  high-intent → low-intent    demote-and-merge
  record      → any intent    attach

When more than one operation is allowed and --op is not given, an
interactive picker is shown on a terminal.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMove(cmd.Context(), args[0], args[1], args[2], opName, output, confirmed)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output tree file (default: stdout)")
	cmd.Flags().StringVar(&opName, "op", "", "operation: merge, demote-as-child, attach, demote-and-merge")
	cmd.Flags().StringSliceVar(&confirmed, "confirmed", nil, "labels confirmed in a previous build")
	return cmd
}

func (c *CLI) runMove(ctx context.Context, input, source, target, opName, output string, confirmed []string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f, err := c.readForest(input, confirmed)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	src, err := resolveNode(f, source)
	if err != nil {
		return err
	}
	dst, err := resolveNode(f, target)
	if err != nil {
		return err
	}

	p, err := reorg.NewPending(f, src.ID, dst.ID)
	if err != nil {
		return err
	}
	if !p.Possible() {
		printError("%s", p.Reason)
		return errors.New(errors.ErrCodeUnsupportedMerge, "%s", p.Reason)
	}

	kind, err := c.chooseOperation(p, opName, src.Label, dst.Label)
	if err != nil {
		return err
	}
	if kind == "" {
		printWarning("No operation chosen, graph unchanged")
		return nil
	}
	op, err := p.Op(kind)
	if err != nil {
		return err
	}

	next, err := reorg.Apply(f, op, cfg.Layout.Options())
	if err != nil {
		return err
	}
	logger.Debug("applied reorganization", "op", op.Kind, "source", op.Source, "target", op.Target)

	w, closeFn, err := c.output(output)
	if err != nil {
		return err
	}
	if err := tree.Write(pkgio.Serialize(next), w); err != nil {
		closeFn()
		return fmt.Errorf("write tree: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}

	printSuccess("%s", reorg.Describe(op, f))
	if output != "" && output != "-" {
		printFile(output)
	}
	printForestStats(next)
	return nil
}

// chooseOperation picks the operation from the flag, the only allowed one,
// or the interactive picker. It returns "" when the user cancels.
func (c *CLI) chooseOperation(p *reorg.Pending, opName, source, target string) (reorg.Operation, error) {
	if opName != "" {
		return reorg.ParseOperation(opName)
	}
	if len(p.Allowed) == 1 {
		return p.Allowed[0], nil
	}
	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"several operations are allowed (%v); pass --op", p.Allowed)
	}
	return pickOperation(p, source, target)
}
