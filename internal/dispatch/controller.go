package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/ops"
	"github.com/livinlefevreloca/stockroom/internal/queue"
)

// QueuedReason is reported when an operation is stored for later synchronization
const QueuedReason = "operation saved for later synchronization"

// Controller tries an operation against the gateway and queues it when the
// gateway cannot be reached. It is the only writer that appends to the queue.
type Controller struct {
	gateway gateway.Gateway
	store   *queue.Store
	logger  *slog.Logger
}

// NewController creates a dispatch-or-queue controller
func NewController(gw gateway.Gateway, store *queue.Store, logger *slog.Logger) *Controller {
	return &Controller{
		gateway: gw,
		store:   store,
		logger:  logger,
	}
}

// Submit runs action once. The returned outcome is:
//   - Success when the gateway answered; the queue is untouched
//   - Queued when the gateway failed with a network error; the operation is
//     appended to the queue and persisted
//   - Failure for invalid parameters, malformed responses (never queued, the
//     remote side may have applied them) and queue persistence errors
//
// Once sent, the request is not aborted when ctx is cancelled.
func (c *Controller) Submit(ctx context.Context, action string, params ops.Params) ops.Outcome {
	op, err := ops.NewOperation(action, params)
	if err != nil {
		return ops.Failure(fmt.Errorf("invalid operation: %w", err))
	}

	data, err := c.gateway.Do(context.WithoutCancel(ctx), op.Action, op.Params)
	if err == nil {
		return ops.Success(data)
	}

	if !gateway.IsNetwork(err) {
		c.logger.Error("operation failed",
			"action", op.Action,
			"error", err)
		return ops.Failure(err)
	}

	if err := c.store.Push(ctx, op); err != nil {
		c.logger.Error("failed to queue operation",
			"action", op.Action,
			"error", err)
		return ops.Failure(fmt.Errorf("failed to queue %s: %w", op.Action, err))
	}

	c.logger.Info("operation queued",
		"action", op.Action,
		"pending", c.store.Len(),
		"cause", err)

	return ops.Queued(QueuedReason)
}

// Pending returns the number of queued operations
func (c *Controller) Pending() int {
	return c.store.Len()
}
