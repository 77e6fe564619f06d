package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxDiagnosticBody bounds how much of a failed response body is kept on errors
const maxDiagnosticBody = 500

// NetworkError is returned when the request never produced an HTTP response
type NetworkError struct {
	Method string
	URL    string
	Host   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cannot reach server at %s: %v", e.Host, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SessionExpiredError is returned for any 401 response
type SessionExpiredError struct {
	Method string
	URL    string
}

func (e *SessionExpiredError) Error() string {
	return "session expired, please log in again"
}

// FieldError is one entry of a backend validation failure
type FieldError struct {
	Path string `json:"path"`
	Msg  string `json:"msg"`
}

// HTTPStatusError is returned for every non-2xx status other than 401
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
	Fields     []FieldError
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Body == "" {
		return fmt.Sprintf("request failed with status %s", status)
	}
	return fmt.Sprintf("request failed with status %s: %s", status, e.Body)
}

// InvalidResponseFormatError is returned when a success response is not JSON
type InvalidResponseFormatError struct {
	URL         string
	ContentType string
	Body        string
}

func (e *InvalidResponseFormatError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "unknown"
	}
	return fmt.Sprintf("server did not return JSON (got %s)", ct)
}

// MalformedJSONError is returned when a JSON response cannot be decoded
type MalformedJSONError struct {
	URL string
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("server returned malformed JSON: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// truncate keeps at most maxDiagnosticBody bytes without splitting a rune
func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDiagnosticBody {
		return s
	}
	cut := maxDiagnosticBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
