package service

import "fmt"

// AuthError is a 401 from any endpoint. It is fatal to the session and is
// never retried: the client fires the unauthorized hook so the session can
// be torn down globally.
type AuthError struct {
	Op string // operation that triggered the 401, e.g. "update task"
}

func (e *AuthError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: unauthorized", e.Op)
	}
	return "unauthorized"
}

// FetchError is any network or server failure other than a 401. It is
// recoverable: callers surface it and leave previously loaded state
// intact so the action can be retried manually.
type FetchError struct {
	Op         string // operation, e.g. "load tasks"
	StatusCode int    // HTTP status, 0 for transport failures
	Message    string // server-provided message, verbatim, may be empty
	Err        error  // underlying transport error, may be nil
}

func (e *FetchError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
