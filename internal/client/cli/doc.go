// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the HTTP API client and a line-oriented REPL.
// The access token obtained by login lives in memory only and is sent with
// "me" until logout or exit.
//
// Commands:
//   - register / login / logout
//   - me: show the current account
//   - forgot / reset: request a reset code and set a new password with it
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
