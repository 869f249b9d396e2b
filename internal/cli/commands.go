package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/stockroom/internal/inventory"
	"github.com/livinlefevreloca/stockroom/internal/ops"
)

func newEntryCommand(opts *RootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Add stock for a scanned product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.printer().Print(opts.service(code).Entry(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "barcode (skips scanning)")
	return cmd
}

func newExitCommand(opts *RootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "exit",
		Short: "Remove stock for a scanned product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.printer().Print(opts.service(code).Exit(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "barcode (skips scanning)")
	return cmd
}

func newLookupCommand(opts *RootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show name, stock and price of a scanned product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.printer().Print(opts.service(code).Lookup(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "barcode (skips scanning)")
	return cmd
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the inventory spreadsheet to Google Drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.printer().Print(opts.service("").Export(cmd.Context()))
		},
	}
}

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay pending operations, stopping at the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := opts.app.Syncer.SyncAll(cmd.Context())

			stats := opts.app.Syncer.GetStats()
			opts.app.Logger.Debug("sync stats",
				"runs", stats.Runs,
				"synced", stats.Synced,
				"stopped_walks", stats.StoppedWalks,
				"last_error", stats.LastError)

			return opts.printer().Print(inventory.SyncMessage(result))
		},
	}
}

func newPendingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List operations waiting to be synchronized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := opts.app.Store.Items()

			lines := []string{fmt.Sprintf("%d pending operations", len(items))}
			for i, op := range items {
				lines = append(lines, fmt.Sprintf("%3d. %s", i+1, describe(op)))
			}
			return opts.printer().Data(items, lines...)
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard every pending operation without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := opts.app.Store.Len()
			if n > 0 && !yes {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("refusing to discard %d pending operations without --yes", n), nil)
			}
			if err := opts.app.Store.Clear(cmd.Context()); err != nil {
				return WrapExitError(ExitCommandError, "failed to clear pending operations", err)
			}
			opts.app.Logger.Info("pending operations discarded", "count", n)
			return opts.printer().Print(inventory.Message{
				Text: fmt.Sprintf("Discarded %d pending operations.", n),
				Kind: inventory.KindInfo,
			})
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm discarding")
	cmd.AddCommand(clearCmd)

	return cmd
}

type statusReport struct {
	Pending   int    `json:"pending"`
	Database  string `json:"database"`
	URL       string `json:"url"`
	Method    string `json:"method"`
	AutoSync  bool   `json:"auto_sync"`
	MaxPerRun int    `json:"max_per_run"`
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue and API settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.app.Config
			report := statusReport{
				Pending:   opts.app.Store.Len(),
				Database:  cfg.Database.DSN,
				URL:       cfg.Gateway.URL,
				Method:    cfg.Gateway.Method,
				AutoSync:  cfg.Syncer.AutoSync,
				MaxPerRun: opts.app.Syncer.GetConfig().MaxPerRun,
			}

			lines := []string{
				fmt.Sprintf("Pending operations: %d", report.Pending),
				fmt.Sprintf("Queue database:     %s", report.Database),
				fmt.Sprintf("API:                %s %s", report.Method, report.URL),
				fmt.Sprintf("Auto sync:          %t", report.AutoSync),
			}
			return opts.printer().Data(report, lines...)
		},
	}
}

// describe renders an operation as "action key=value ..." with sorted keys
func describe(op ops.Operation) string {
	keys := make([]string, 0, len(op.Params))
	for k := range op.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{op.Action}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, op.Params[k]))
	}
	return strings.Join(parts, " ")
}
