package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is the decoded failure of a single request.
type Error struct {
	Op     string // operation that failed, eg. "login"
	Status int    // HTTP status; zero when the request never completed
	Detail string // server-supplied detail, or a fallback description
	Err    error  // underlying transport error, when any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a rejected-credential response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// IsNetwork reports whether err means the server was never reached.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0 && apiErr.Err != nil
}

// Detail extracts the human-readable part of err for display.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// parseDetail pulls the "detail" field out of an error body. Bodies that are
// not JSON, or whose detail is not a plain string, yield "".
func parseDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}
