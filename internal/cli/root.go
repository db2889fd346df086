package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"spendlens/internal/config"
	"spendlens/internal/log"
)

// openLedgerFunc builds the ledger a command runs against.
type openLedgerFunc func(ctx context.Context) (*Ledger, error)

var (
	openLedger openLedgerFunc = openConfiguredLedger
	ledger     *Ledger
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "spendctl",
	Short: "Query transactions and manage budgets",
	Long: `spendctl runs the spendlens query and budget engines against the
configured store. Configuration comes from the environment (and an optional
.env file), exactly as for the server.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLedger,
	PersistentPostRunE: teardownLedger,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// Execute runs spendctl with the process arguments.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func openConfiguredLedger(ctx context.Context) (*Ledger, error) {
	LoadEnvFile()
	cfg := config.Load()
	if cfg.LogLevel == "info" {
		// Commands print their results on stdout; keep routine logs out of it.
		cfg.LogLevel = "warn"
	}
	logger := SetupLogger(cfg).WithComponent(log.ComponentCLI)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return OpenLedger(ctx, cfg, logger)
}

func setupLedger(cmd *cobra.Command, _ []string) error {
	l, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	ledger = l
	return nil
}

func teardownLedger(*cobra.Command, []string) error {
	if ledger == nil {
		return nil
	}
	err := ledger.Close()
	ledger = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
