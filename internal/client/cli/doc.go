// Package cli provides the interactive shelfsync command-line client.
//
// It wires configuration, the persisted session and the HTTP API client
// into a small REPL. Typical flow: log in (answering a verification code
// prompt when the provider asks for one), trigger a library sync and watch
// its status until it finishes.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
