package inventory

import (
	"context"
	"fmt"

	"github.com/livinlefevreloca/stockroom/internal/ops"
)

// MessageKind selects how a message is rendered
type MessageKind string

const (
	KindInfo    MessageKind = "info"
	KindSuccess MessageKind = "success"
	KindQueued  MessageKind = "queued" // saved locally, not applied remotely yet
	KindError   MessageKind = "error"
)

// Message is the user-facing result of a flow
type Message struct {
	Text string
	Kind MessageKind
}

// Scanner reads one barcode. An empty code means the user gave up.
type Scanner interface {
	Scan(ctx context.Context) (string, error)
}

// Prompter asks the user for a line of text. An empty answer means cancel.
type Prompter interface {
	Prompt(label, def string) (string, error)
}

// Submitter dispatches an operation or queues it
type Submitter interface {
	Submit(ctx context.Context, action string, params ops.Params) ops.Outcome
}

// Synchronizer replays the pending queue
type Synchronizer interface {
	SyncAll(ctx context.Context) ops.SyncResult
}

// ValidationError reports invalid user input. It never reaches the queue.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
