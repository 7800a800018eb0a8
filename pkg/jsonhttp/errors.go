package jsonhttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// maxErrorBody bounds how much of a failed response is kept on HTTPError.
const maxErrorBody = 4 << 10

// HTTPError reports a response whose status is outside 2xx.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int

	// Status is the reason phrase, e.g. "Not Found".
	Status string

	// Payload is the serialized request body. Empty for GET.
	Payload string

	// Body holds up to 4KiB of the response body. It is not part of the
	// error message.
	Body string
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "jsonhttp: HTTP error %d", e.StatusCode)
	if e.Status != "" {
		b.WriteString(" " + e.Status)
	}
	fmt.Fprintf(&b, ": %s %s", e.Method, e.URL)
	if e.Method == http.MethodPost {
		fmt.Fprintf(&b, " with payload %s", e.Payload)
	}
	return b.String()
}

// EncodeError reports a payload that could not be serialized to JSON. No
// request is sent when it occurs.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("jsonhttp: encode payload: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsonhttp: decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// isSuccess reports whether code is in the 2xx range.
func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}

// statusText extracts the reason phrase from resp.Status, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
