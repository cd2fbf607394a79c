package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/payengine/internal/adapter/csvio"
	"github.com/iho/payengine/internal/adapter/memory"
	"github.com/iho/payengine/internal/adapter/monitor"
	"github.com/iho/payengine/internal/engine"
	"github.com/iho/payengine/internal/infrastructure/config"
	"github.com/iho/payengine/internal/infrastructure/logger"
	"github.com/iho/payengine/internal/infrastructure/metrics"
)

var (
	outputPath            string
	follow                bool
	metricsAddr           string
	disputeWithdrawals    bool
	lockedBlocksTransfers bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "payengine",
		Short:         "Transaction stream processor",
		Long:          `Applies a stream of transaction records to an in-memory ledger and exports the final per-client balances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	processCmd := &cobra.Command{
		Use:   "process <input.csv>",
		Short: "Process a transaction file and print the balance snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0])
		},
	}

	processCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Output file ('-' for stdout)")
	processCmd.Flags().BoolVar(&follow, "follow", false, "Keep reading as the input file grows")
	processCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address during the run")
	processCmd.Flags().BoolVar(&disputeWithdrawals, "dispute-withdrawals", true, "Allow withdrawals as dispute targets")
	processCmd.Flags().BoolVar(&lockedBlocksTransfers, "locked-blocks-transfers", false, "Locked accounts reject further deposits and withdrawals")

	rootCmd.AddCommand(processCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, inputPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over the environment when set explicitly.
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if cmd.Flags().Changed("dispute-withdrawals") {
		cfg.DisputeWithdrawals = disputeWithdrawals
	}
	if cmd.Flags().Changed("locked-blocks-transfers") {
		cfg.LockedBlocksTransfers = lockedBlocksTransfers
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).
		With().
		Str("run_id", ulid.Make().String()).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	input, closeInput, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	var reader io.Reader = input
	if follow {
		reader = csvio.NewFollowReader(ctx, input, cfg.FollowIdleTimeout)
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		mon := monitor.NewServer(cfg.MetricsAddr, log)
		mon.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mon.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to stop monitor server")
			}
		}()
	}

	accounts := memory.NewAccountStore()
	entries := memory.NewEntryStore()

	policy := engine.Policy{
		DisputeWithdrawals:    cfg.DisputeWithdrawals,
		LockedBlocksTransfers: cfg.LockedBlocksTransfers,
	}

	eng := engine.New(accounts, entries, policy, log, m)

	if err := eng.Process(ctx, csvio.NewDecoder(reader, log)); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	snapshot, err := eng.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to build balance snapshot: %w", err)
	}

	output, closeOutput, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := csvio.NewEncoder(output).Encode(snapshot); err != nil {
		return fmt.Errorf("failed to export balances: %w", err)
	}

	log.Info().Int("accounts", len(snapshot)).Msg("run complete")
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
