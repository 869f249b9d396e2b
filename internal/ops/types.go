package ops

import (
	"fmt"
	"strconv"
)

// Well-known actions understood by the inventory API
const (
	ActionLookup = "consulta"
	ActionEntry  = "entrada"
	ActionExit   = "saida"
	ActionExport = "export"
)

// StatusNotFound is the response status for an unknown product code
const StatusNotFound = "NOT_FOUND"

// Params holds the flat scalar parameters of an operation
type Params map[string]any

// Operation is one remote action together with its parameters.
// Queued operations have no identity beyond their position in the queue.
type Operation struct {
	Action string `json:"action"`
	Params Params `json:"params"`
}

// NewOperation builds an operation from caller parameters.
// Numbers are coerced to float64 so a record reads back from JSON unchanged;
// non-scalar values are rejected.
func NewOperation(action string, params Params) (Operation, error) {
	if action == "" {
		return Operation{}, fmt.Errorf("action must not be empty")
	}

	cp := make(Params, len(params))
	for k, v := range params {
		c, ok := coerceScalar(v)
		if !ok {
			return Operation{}, fmt.Errorf("parameter %q has non-scalar type %T", k, v)
		}
		cp[k] = c
	}

	return Operation{Action: action, Params: cp}, nil
}

func coerceScalar(v any) (any, bool) {
	switch n := v.(type) {
	case nil, string, bool, float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return nil, false
	}
}

// Response is the decoded JSON object returned by the API
type Response map[string]any

// Status returns the response status discriminator, or "" if absent
func (r Response) Status() string {
	s, _ := r["status"].(string)
	return s
}

// NotFound reports whether the API did not recognise the product code
func (r Response) NotFound() bool {
	return r.Status() == StatusNotFound
}

// Name returns the product name
func (r Response) Name() string {
	return r.String("name")
}

// Price returns the unit price as text, whatever JSON type the API used
func (r Response) Price() string {
	return r.String("price")
}

// Stock returns the current stock count as text
func (r Response) Stock() string {
	return r.String("stock")
}

// String renders a field as text. Missing fields render as "".
func (r Response) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// OutcomeKind tags an Outcome
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeQueued
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeQueued:
		return "queued"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of submitting an operation.
// A queued outcome has NOT taken effect remotely yet.
type Outcome struct {
	Kind   OutcomeKind
	Data   Response // set for OutcomeSuccess
	Reason string   // set for OutcomeQueued
	Err    error    // set for OutcomeFailure
}

// Success wraps a successful response
func Success(data Response) Outcome {
	return Outcome{Kind: OutcomeSuccess, Data: data}
}

// Queued reports that the operation was stored for later synchronization
func Queued(reason string) Outcome {
	return Outcome{Kind: OutcomeQueued, Reason: reason}
}

// Failure wraps an error that was neither applied nor queued
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }
func (o Outcome) IsQueued() bool  { return o.Kind == OutcomeQueued }
func (o Outcome) IsFailure() bool { return o.Kind == OutcomeFailure }

// SyncResult summarises one synchronization walk
type SyncResult struct {
	Synced    int
	Remaining int

	// Nothing is set when the queue was empty and no walk happened
	Nothing bool
}

// Complete reports whether the queue was fully drained
func (r SyncResult) Complete() bool {
	return r.Remaining == 0
}
