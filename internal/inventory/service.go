package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/livinlefevreloca/stockroom/internal/ops"
)

// Service implements the stock entry, exit, lookup, export and sync flows
type Service struct {
	submitter Submitter
	syncer    Synchronizer
	scanner   Scanner
	prompter  Prompter
	logger    *slog.Logger
}

// NewService wires the flows to their collaborators
func NewService(submitter Submitter, syncer Synchronizer, scanner Scanner, prompter Prompter, logger *slog.Logger) *Service {
	return &Service{
		submitter: submitter,
		syncer:    syncer,
		scanner:   scanner,
		prompter:  prompter,
		logger:    logger,
	}
}

var errCancelled = errors.New("cancelled")

// Entry adds stock for a scanned product, registering it first if unknown
func (s *Service) Entry(ctx context.Context) Message {
	code, msg, ok := s.scan(ctx)
	if !ok {
		return msg
	}

	product, msg, ok := s.lookup(ctx, code)
	if !ok {
		return msg
	}

	var name string
	var price any
	if product.NotFound() {
		var err error
		name, err = s.ask("Product not found. Enter the product name", "")
		if err != nil {
			return s.promptFailed("Entry", err)
		}
		answer, err := s.ask("Enter the unit price", "")
		if err != nil {
			return s.promptFailed("Entry", err)
		}
		p, err := parsePrice(answer)
		if err != nil {
			return Message{Text: "Invalid price.", Kind: KindError}
		}
		price = p
	} else {
		name = product.Name()
		price = product["price"]
	}

	qty, msg, ok := s.quantity("Quantity to add")
	if !ok {
		return msg
	}

	out := s.submitter.Submit(ctx, ops.ActionEntry, ops.Params{
		"code":  code,
		"qty":   qty,
		"name":  name,
		"price": price,
	})
	return outcomeMessage(out, "Entry recorded!")
}

// Exit removes stock for a scanned product that must already exist
func (s *Service) Exit(ctx context.Context) Message {
	code, msg, ok := s.scan(ctx)
	if !ok {
		return msg
	}

	product, msg, ok := s.lookup(ctx, code)
	if !ok {
		return msg
	}
	if product.NotFound() {
		return Message{Text: "Product does not exist. Cannot remove stock.", Kind: KindError}
	}

	qty, msg, ok := s.quantity(fmt.Sprintf("Current stock: %s. Quantity to remove", product.Stock()))
	if !ok {
		return msg
	}

	out := s.submitter.Submit(ctx, ops.ActionExit, ops.Params{
		"code": code,
		"qty":  qty,
	})
	return outcomeMessage(out, "Exit recorded!")
}

// Lookup shows the stored details of a scanned product
func (s *Service) Lookup(ctx context.Context) Message {
	code, msg, ok := s.scan(ctx)
	if !ok {
		return msg
	}

	product, msg, ok := s.lookup(ctx, code)
	if !ok {
		return msg
	}
	if product.NotFound() {
		return Message{Text: "Product not found.", Kind: KindError}
	}

	return Message{
		Text: fmt.Sprintf("Code: %s\nName: %s\nStock: %s\nPrice: €%s",
			code, product.Name(), product.Stock(), product.Price()),
		Kind: KindInfo,
	}
}

// Export asks the API to write the inventory file to Google Drive
func (s *Service) Export(ctx context.Context) Message {
	out := s.submitter.Submit(ctx, ops.ActionExport, ops.Params{})
	return outcomeMessage(out, `Inventory exported to the "Inventário" Google Drive folder!`)
}

// Sync replays the pending queue and reports what is left
func (s *Service) Sync(ctx context.Context) Message {
	return SyncMessage(s.syncer.SyncAll(ctx))
}

// SyncMessage renders a synchronization result
func SyncMessage(result ops.SyncResult) Message {
	switch {
	case result.Nothing:
		return Message{Text: "No pending operations.", Kind: KindInfo}
	case result.Complete():
		return Message{Text: "Synchronization complete!", Kind: KindSuccess}
	default:
		return Message{
			Text: fmt.Sprintf("%d operations still waiting to be synchronized.", result.Remaining),
			Kind: KindError,
		}
	}
}

func (s *Service) scan(ctx context.Context) (string, Message, bool) {
	code, err := s.scanner.Scan(ctx)
	if err != nil {
		s.logger.Error("failed to read barcode", "error", err)
		return "", Message{Text: fmt.Sprintf("Could not read barcode: %v", err), Kind: KindError}, false
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", Message{Text: "No barcode read.", Kind: KindInfo}, false
	}
	return code, Message{}, true
}

// lookup only continues the flow when the API actually answered
func (s *Service) lookup(ctx context.Context, code string) (ops.Response, Message, bool) {
	out := s.submitter.Submit(ctx, ops.ActionLookup, ops.Params{"code": code})
	if !out.IsSuccess() {
		return nil, outcomeMessage(out, ""), false
	}
	return out.Data, Message{}, true
}

func (s *Service) ask(label, def string) (string, error) {
	answer, err := s.prompter.Prompt(label, def)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errCancelled
	}
	return answer, nil
}

func (s *Service) quantity(label string) (float64, Message, bool) {
	answer, err := s.ask(label, "1")
	if err != nil {
		return 0, s.promptFailed("Operation", err), false
	}
	qty, err := parseQuantity(answer)
	if err != nil {
		return 0, Message{Text: "Invalid quantity.", Kind: KindError}, false
	}
	return qty, Message{}, true
}

func (s *Service) promptFailed(flow string, err error) Message {
	if errors.Is(err, errCancelled) {
		return Message{Text: flow + " cancelled.", Kind: KindError}
	}
	s.logger.Error("failed to read input", "error", err)
	return Message{Text: fmt.Sprintf("Could not read input: %v", err), Kind: KindError}
}

// parseQuantity accepts a positive number, with either '.' or ',' as decimal separator
func parseQuantity(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, &ValidationError{Field: "quantity", Value: s}
	}
	return v, nil
}

// parsePrice accepts a non-negative number, optionally prefixed with €
func parsePrice(s string) (float64, error) {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "€"))
	v, err := strconv.ParseFloat(strings.Replace(t, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, &ValidationError{Field: "price", Value: s}
	}
	return v, nil
}

func outcomeMessage(out ops.Outcome, success string) Message {
	switch out.Kind {
	case ops.OutcomeSuccess:
		return Message{Text: success, Kind: KindSuccess}
	case ops.OutcomeQueued:
		return Message{Text: "No connection. " + capitalize(out.Reason) + ".", Kind: KindQueued}
	default:
		if out.Err == nil {
			return Message{Text: "Operation failed.", Kind: KindError}
		}
		return Message{Text: out.Err.Error(), Kind: KindError}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
