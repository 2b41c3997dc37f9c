// Package cli provides the interactive devconnector command-line client.
//
// It wires configuration, the local token store, the HTTP API client, the
// session and the alert channel into a small REPL. On start the stored
// token is reconciled with the server; a background watcher keeps the
// online/offline indicator in the prompt current.
//
// Commands: register, login, me, logout, alerts, dismiss <id>, ping,
// help, exit.
package cli
