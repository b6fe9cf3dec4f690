package internal

import "fmt"

// RequestError represents a failed backend request
type RequestError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request error: %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("request error: %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ImportError represents a rejected session document
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import error: %s: %v", e.Reason, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// StoreError represents errors accessing the local state store
type StoreError struct {
	Op  string // "open", "get", "set", "delete"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
