package apiclient

import (
	"encoding/json"
	"fmt"
)

// HTTPError is a non-2xx response. Payload holds the decoded JSON body when
// the body is a JSON object.
type HTTPError struct {
	StatusCode int
	Body       string
	Payload    map[string]any
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status, Body: string(body)}
	var payload map[string]any
	if json.Unmarshal(body, &payload) == nil {
		e.Payload = payload
	}
	return e
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if msg := e.UserMessage(); msg != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// UserMessage extracts the service's message from the payload.
// Order: "message", then "error" when it is a string, then "error.message".
func (e *HTTPError) UserMessage() string {
	if e.Payload == nil {
		return ""
	}
	if msg, ok := e.Payload["message"].(string); ok && msg != "" {
		return msg
	}
	switch v := e.Payload["error"].(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}
