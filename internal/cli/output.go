package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/livinlefevreloca/stockroom/internal/inventory"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Operation applied, or informational message
	ExitFailure      = 1 // Operation failed or synchronization incomplete
	ExitCommandError = 2 // Bad flags, configuration or storage
	ExitQueued       = 3 // Operation saved locally, not applied remotely yet
)

// ExitError carries an exit code out of a command.
// An empty Message means the output was already printed.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsSilent reports whether err has nothing left to print
func IsSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Err == nil
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	queuedColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// Printer renders inventory messages as coloured text or JSON
type Printer struct {
	Format string
	Writer io.Writer
}

type jsonMessage struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Print writes msg and returns the exit status that goes with its kind
func (p *Printer) Print(msg inventory.Message) error {
	if p.Format == "json" {
		enc := json.NewEncoder(p.Writer)
		if err := enc.Encode(jsonMessage{Kind: string(msg.Kind), Text: msg.Text}); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	} else {
		fmt.Fprintln(p.Writer, colorFor(msg.Kind).Sprint(msg.Text))
	}

	switch msg.Kind {
	case inventory.KindError:
		return &ExitError{Code: ExitFailure}
	case inventory.KindQueued:
		return &ExitError{Code: ExitQueued}
	default:
		return nil
	}
}

// Data writes a structured value; text format uses the fallback lines
func (p *Printer) Data(v any, lines ...string) error {
	if p.Format == "json" {
		enc := json.NewEncoder(p.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(p.Writer, l)
	}
	return nil
}

func colorFor(kind inventory.MessageKind) *color.Color {
	switch kind {
	case inventory.KindSuccess:
		return successColor
	case inventory.KindQueued:
		return queuedColor
	case inventory.KindError:
		return errorColor
	default:
		return infoColor
	}
}
