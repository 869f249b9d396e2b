package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/stockroom/internal/config"
	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/inventory"
)

// RootOptions holds global flags and the wiring shared by all commands.
type RootOptions struct {
	ConfigPath string
	URL        string
	Verbose    bool
	Format     string // "json" | "text"

	// Gateway replaces the HTTP client when set
	Gateway gateway.Gateway

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	app *App
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// commands that manage the queue themselves and skip auto-sync
var noAutoSync = map[string]bool{"sync": true, "pending": true, "clear": true, "status": true}

// NewRootCommand creates the root command for the stockroom CLI.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}

	cmd := &cobra.Command{
		Use:   "stockroom",
		Short: "Barcode inventory client with an offline queue",
		Long: "stockroom records stock entries and exits against a spreadsheet-backed API.\n" +
			"Operations that cannot reach the API are saved locally and replayed with 'stockroom sync'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return WrapExitError(ExitCommandError, "invalid output format",
					fmt.Errorf("%q must be one of %v", opts.Format, ValidFormats))
			}
			if cmd.Name() == "help" {
				return nil
			}
			return opts.setup(cmd.Context(), cmd.Name())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file (TOML)")
	cmd.PersistentFlags().StringVar(&opts.URL, "url", "", "inventory API URL (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newEntryCommand(opts))
	cmd.AddCommand(newExitCommand(opts))
	cmd.AddCommand(newLookupCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newPendingCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))

	return cmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, opts *RootOptions, args []string) int {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.ErrOut)

	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		if cerr := opts.app.Close(); cerr != nil {
			fmt.Fprintf(opts.ErrOut, "warning: failed to close database: %v\n", cerr)
		}
	}

	if err != nil && !IsSilent(err) {
		fmt.Fprintln(opts.ErrOut, errorColor.Sprint("Error: "+err.Error()))
	}

	// cobra flag and argument errors are not ExitErrors
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ExitCommandError
	}
	return GetExitCode(err)
}

func (o *RootOptions) setup(ctx context.Context, name string) error {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.URL != "" {
		cfg.Gateway.URL = o.URL
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(cfg.Logging, o.Verbose, o.ErrOut)

	app, err := NewApp(ctx, cfg, o.Gateway, logger)
	if err != nil {
		return err
	}
	o.app = app

	if cfg.Syncer.AutoSync && !noAutoSync[name] && app.Store.Len() > 0 {
		result := app.Syncer.SyncAll(ctx)
		// a partial sync is reported but does not stop the command
		o.printer().Print(inventory.SyncMessage(result))
	}
	return nil
}

func (o *RootOptions) printer() *Printer {
	return &Printer{Format: o.Format, Writer: o.Out}
}

// service builds the inventory flows; code skips the barcode prompt when set
func (o *RootOptions) service(code string) *inventory.Service {
	var prompter inventory.Prompter
	var scanner inventory.Scanner

	if o.In != nil || !isTerminal() {
		in := o.In
		if in == nil {
			in = os.Stdin
		}
		lp := NewLinePrompter(in, o.ErrOut)
		prompter, scanner = lp, lp
	} else {
		prompter, scanner = TermPrompter{}, TermPrompter{}
	}

	if code != "" {
		scanner = StaticScanner(code)
	}
	return o.app.Service(scanner, prompter)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
