// Package jsonhttp fetches and posts JSON over HTTP.
//
// [Client.FetchJSON] issues a GET and decodes the response body, and
// [Client.PostJSON] serializes a payload, POSTs it with
// Content-Type: application/json and decodes the response body. Any status
// outside 2xx is reported as an [*HTTPError]; malformed JSON in either
// direction is reported as an [*EncodeError] or [*DecodeError].
//
// # Usage
//
//	client := jsonhttp.New(jsonhttp.WithLogger(logger))
//
//	v, err := client.FetchJSON(ctx, "https://api.example.com/items")
//	if err != nil {
//	    var httpErr *jsonhttp.HTTPError
//	    if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
//	        ...
//	    }
//	    return err
//	}
//
// Decoded bodies are [jsonvalue.Value] trees. Callers that know the response
// shape can decode straight into a struct with [Client.FetchInto] and
// [Client.PostInto].
//
// # Timeouts
//
// The package imposes no timeout and never retries. Bound a call by passing a
// context with a deadline, or by supplying an *http.Client with Timeout set
// through [WithHTTPClient].
//
// # Version
//
// See version.go for version constants that can be used programmatically.
package jsonhttp
