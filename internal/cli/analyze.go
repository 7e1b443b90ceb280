package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/api/dto"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func newAnalyzeCommand(global *GlobalFlags) *cobra.Command {
	flags := &AnalyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Reconcile one batch of transactions and receipts",
		Long: `Analyze reads a JSON document of the form
  {"transactions": [...], "receipts": [...]}
and writes the ranked candidates per receipt with batch statistics.

Examples:
  reconciler analyze --input batch.json --pretty
  cat batch.json | reconciler analyze --input - --output result.json
  reconciler analyze --workspace acme`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return flags.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			return RunAnalyze(cmd.Context(), cfg, flags, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	flags.Bind(cmd.Flags())
	return cmd
}

func (f *AnalyzeFlags) validate() error {
	switch {
	case f.Input == "" && f.Workspace == "":
		return errors.New("one of --input or --workspace is required")
	case f.Input != "" && f.Workspace != "":
		return errors.New("--input and --workspace cannot be combined")
	}
	return nil
}

// RunAnalyze runs one reconciliation and writes the result as JSON to the
// output file or stdout. Logs and the summary go to stderr.
func RunAnalyze(ctx context.Context, cfg *config.Config, flags *AnalyzeFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := logging.New(stderr, cfg.Observability.Logging).With("system", "reconcile")

	var store storage.Repository
	if flags.Record || flags.Workspace != "" {
		s, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	svc := service.NewReconcileService(matcher.NewMatcher(cfg.Reconciliation.Matcher()), store, logger)

	var analysis *service.Analysis
	if flags.Workspace != "" {
		a, err := svc.AnalyzeWorkspace(ctx, flags.Workspace)
		if err != nil {
			return err
		}
		analysis = a
	} else {
		req, err := readInput(flags.Input, stdin)
		if err != nil {
			return err
		}
		req.Source = storage.SourceCLI
		a, err := svc.Analyze(ctx, req)
		if err != nil {
			return err
		}
		analysis = a
	}

	if err := writeResult(analysis.Result, flags, stdout); err != nil {
		return err
	}

	PrintSummary(stderr, analysis, store != nil)
	return nil
}

func readInput(path string, stdin io.Reader) (service.AnalyzeRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return service.AnalyzeRequest{}, fmt.Errorf("failed to read input: %w", err)
	}

	var body dto.AnalyzeRequest
	if err := json.Unmarshal(data, &body); err != nil {
		return service.AnalyzeRequest{}, fmt.Errorf("failed to parse input: %w", err)
	}
	transactions, receipts, err := body.Decode()
	if err != nil {
		return service.AnalyzeRequest{}, fmt.Errorf("failed to parse input: %w", err)
	}

	return service.AnalyzeRequest{Transactions: transactions, Receipts: receipts}, nil
}

func writeResult(result *matcher.Result, flags *AnalyzeFlags, stdout io.Writer) error {
	w := stdout
	if flags.Output != "" {
		f, err := os.Create(flags.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := json.NewEncoder(w)
	if flags.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
