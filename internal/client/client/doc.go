// Package client talks to the devconnector auth API over HTTP and
// bootstraps the CLI's local SQLite storage.
//
// # Requests
//
// Client is the transport contract used by the session layer. HTTPClient
// implements it with net/http. Authorisation is never stored in the
// client: each call that needs it takes a RequestOptions value holding
// the bearer token captured at dispatch time.
//
// # Errors
//
// Responses are mapped to sentinels matched with errors.Is:
// ErrUnauthorized (401), ErrNotFound (404), ErrUnavailable (transport
// failures and gateway statuses) and ErrServer (other non-2xx). A 400
// becomes a *ValidationError carrying every message the server sent.
//
// # Storage
//
// InitDatabase opens the SQLite file and applies the embedded goose
// migrations (see RunMigrations).
package client
