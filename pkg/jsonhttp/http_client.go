package jsonhttp

import "net/http"

// HTTPClient executes a single HTTP request. *http.Client satisfies it, and
// tests or custom transports can substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
