package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/livinlefevreloca/stockroom/internal/ops"
)

// DefaultSlot is the storage slot holding the serialized queue
const DefaultSlot = "pendingUpdates"

// Slots is durable storage for named documents
type Slots interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
}

// Store is the pending operation queue: an ordered in-memory list mirrored
// to a single storage slot. Insertion order is retry order.
//
// Store is not safe for concurrent use; callers are expected to be single-flight.
type Store struct {
	slots  Slots
	slot   string
	logger *slog.Logger
	items  []ops.Operation
}

// NewStore creates an empty store. Call Load to read durable state.
func NewStore(slots Slots, slot string, logger *slog.Logger) *Store {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Store{
		slots:  slots,
		slot:   slot,
		logger: logger,
		items:  make([]ops.Operation, 0),
	}
}

// Load replaces the in-memory queue with the slot contents and returns it.
// Missing, unreadable or corrupt storage yields an empty queue and is never an error.
func (s *Store) Load(ctx context.Context) []ops.Operation {
	s.items = s.read(ctx)
	s.logger.Debug("loaded pending queue",
		"slot", s.slot,
		"pending", len(s.items))
	return s.Items()
}

func (s *Store) read(ctx context.Context) []ops.Operation {
	empty := make([]ops.Operation, 0)

	data, ok, err := s.slots.Get(ctx, s.slot)
	if err != nil {
		s.logger.Error("failed to read pending queue, starting empty",
			"slot", s.slot,
			"error", err)
		return empty
	}
	if !ok || len(data) == 0 {
		return empty
	}

	var items []ops.Operation
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("discarding corrupt pending queue",
			"slot", s.slot,
			"bytes", len(data),
			"error", err)
		return empty
	}

	for _, item := range items {
		if item.Action == "" {
			s.logger.Warn("discarding corrupt pending queue",
				"slot", s.slot,
				"error", "record without action")
			return empty
		}
	}

	// JSON "null" decodes to a nil slice
	if items == nil {
		return empty
	}
	return items
}

// Save serializes the whole queue and overwrites the slot. The write ignores
// cancellation of ctx: the in-memory queue already reflects replies the API
// sent, and storage must not fall behind it.
func (s *Store) Save(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode pending queue: %w", err)
	}
	if err := s.slots.Put(context.WithoutCancel(ctx), s.slot, data); err != nil {
		return fmt.Errorf("failed to save pending queue: %w", err)
	}
	return nil
}

// Push appends an operation and persists the queue
func (s *Store) Push(ctx context.Context, op ops.Operation) error {
	s.items = append(s.items, op)
	return s.Save(ctx)
}

// RemoveAt drops the record at index i without persisting
func (s *Store) RemoveAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// At returns the record at index i
func (s *Store) At(i int) ops.Operation {
	return s.items[i]
}

// Clear empties the queue and persists it
func (s *Store) Clear(ctx context.Context) error {
	s.items = make([]ops.Operation, 0)
	return s.Save(ctx)
}

// Len returns the number of pending operations
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns a copy of the pending operations in retry order
func (s *Store) Items() []ops.Operation {
	result := make([]ops.Operation, len(s.items))
	copy(result, s.items)
	return result
}
