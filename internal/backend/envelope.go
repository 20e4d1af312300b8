// AngelaMos | 2026
// envelope.go

package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrRequestFailed = errors.New("request failed")

// APIError is a response the backend answered but did not report as a
// success, either through the envelope or through the HTTP status.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// UserMessage is the text shown in a console notification.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "request failed"
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

type errorObject struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeEnvelope(method, path string, status int, raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= http.StatusBadRequest {
			return &APIError{Method: method, Path: path, Status: status}
		}
		return fmt.Errorf("%s %s: decode response: %w: %w", method, path, ErrRequestFailed, err)
	}

	if status >= http.StatusBadRequest || !env.Success {
		code, msg := parseError(env.Error)
		if msg == "" {
			msg = env.Message
		}
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  status,
			Code:    code,
			Message: msg,
		}
	}

	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w: %w", method, path, ErrRequestFailed, err)
	}

	return nil
}

// parseError accepts both `"error": "text"` and `"error": {"code","message"}`.
func parseError(raw json.RawMessage) (code, message string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return "", strings.TrimSpace(s)
	}

	var obj errorObject
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Code, strings.TrimSpace(obj.Message)
	}

	return "", ""
}

// ErrorMessage picks the notification text for a failed backend call.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "The server could not be reached. Please try again."
}
