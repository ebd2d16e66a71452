package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/extract"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// extractCommand sends records to the extraction service.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		output   string
		scenario string
		prior    string
		toStore  bool
	)

	cmd := &cobra.Command{
		Use:   "extract [records.json]",
		Short: "Extract an intent tree from raw records",
		Long: `Extract an intent tree from raw records.

The records file is a JSON array of record entries. They are sent, with the
scenario and an optional prior tree, to the extraction service configured in
[extract] url. Failed requests are retried; repeated failures open a circuit
breaker.

With --store the records are saved to the configured store and the stored
tree is re-extracted in place, keeping confirmations by label.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toStore {
				return c.runExtractStore(cmd.Context(), args[0])
			}
			return c.runExtract(cmd.Context(), args[0], scenario, prior, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output tree file (default: stdout)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario the records belong to")
	cmd.Flags().StringVar(&prior, "prior", "", "previous tree to refine")
	cmd.Flags().BoolVar(&toStore, "store", false, "import into the configured store and re-extract there")
	return cmd
}

func (c *CLI) runExtract(ctx context.Context, input, scenario, priorPath, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Extract.Enabled() {
		return errors.New(errors.ErrCodeInvalidInput, "no extraction service configured; set [extract] url")
	}
	ex := extract.NewClient(cfg.Extract, loggerFromContext(ctx))
	recs, err := readRecords(input)
	if err != nil {
		return err
	}
	var prior *tree.Tree
	if priorPath != "" {
		if prior, err = tree.ReadFile(priorPath); err != nil {
			return fmt.Errorf("read prior tree: %w", err)
		}
		if scenario == "" {
			scenario = prior.Scenario
		}
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Extracting intents from %d records...", len(recs)))
	spinner.Start()
	t, err := ex.Extract(ctx, recs, scenario, prior)
	if err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.Stop()
	if t.Scenario == "" {
		t.Scenario = scenario
	}

	w, closeFn, err := c.output(output)
	if err != nil {
		return err
	}
	if err := tree.Write(t, w); err != nil {
		closeFn()
		return fmt.Errorf("write tree: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}
	printSuccess("Extracted %d intents", t.Len())
	if output != "" && output != "-" {
		printFile(output)
		printNextStep("Inspect", "intentgraph validate "+output)
	}
	return nil
}

func (c *CLI) runExtractStore(ctx context.Context, input string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	recs, err := readRecords(input)
	if err != nil {
		return err
	}
	gw, err := c.openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	s := c.newSession(cfg, gw)
	if err := s.Load(ctx); err != nil && !errors.Is(err, errors.ErrCodeNotFound) {
		return err
	}
	if err := s.ImportRecords(ctx, recs); err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Re-extracting %d records...", len(recs)))
	spinner.Start()
	if err := s.Reextract(ctx); err != nil {
		spinner.StopWithError("Extraction failed")
		return err
	}
	spinner.StopWithSuccess("Stored tree re-extracted")

	f, v := s.Graph()
	printKeyValue("Namespace", cfg.Store.Namespace)
	printKeyValue("Version", fmt.Sprint(v))
	printForestStats(f)
	return nil
}

// readRecords reads a JSON array of record entries from a file, or from
// stdin for "-".
func readRecords(path string) ([]tree.Entry, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var recs []tree.Entry
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "records must be a JSON array")
	}
	return recs, nil
}
