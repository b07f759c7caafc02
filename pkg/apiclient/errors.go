package apiclient

import (
	"encoding/json"
	"fmt"

	"idpclient/pkg/platform/sentinel"
)

// RequestError is returned for every non-2xx response. It carries the status
// and the body exactly as the server sent them.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Message is the server's "error" (or "message") field when the body is
	// a JSON object carrying one.
	Message   string
	RequestID string
}

func newRequestError(method, path string, status int, body []byte, requestID string) *RequestError {
	return &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
		Message:    serverMessage(body),
		RequestID:  requestID,
	}
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Is lets errors.Is match the sentinel that classifies the status code.
func (e *RequestError) Is(target error) bool {
	s := sentinel.ForStatus(e.StatusCode)
	return s != nil && target == s
}

func serverMessage(body []byte) string {
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg, ok := payload.Error.(string); ok && msg != "" {
		return msg
	}
	return payload.Message
}
