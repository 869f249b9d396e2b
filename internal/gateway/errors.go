package gateway

import (
	"errors"
	"fmt"
)

// NetworkError means the request never produced a usable answer: the
// transport failed or the API replied with a non-2xx status.
// It is safe to queue the operation and retry later.
type NetworkError struct {
	Action     string
	StatusCode int // 0 when the transport failed
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s: unexpected status %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("gateway: %s: %v", e.Action, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the API answered but the body could not be
// decoded. The remote side may already have applied the operation.
type MalformedResponseError struct {
	Action string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("gateway: %s: malformed response: %v", e.Action, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsNetwork checks if err is a NetworkError
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsMalformed checks if err is a MalformedResponseError
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
