// Package client talks to the gophauth REST API.
//
// HTTPClient implements Client over JSON/HTTP. Transport failures wrap
// ErrUnavailable; non-2xx responses are returned as *APIError, which unwraps
// to ErrUnauthorized (401) or ErrRateLimited (429) so callers can use errors.Is.
package client
