// Package iterable is a minimal HTTP client for the Iterable REST API,
// carrying the Api-Key header and surfacing non-2xx responses as typed
// errors.
package iterable
