// Package cli provides the interactive MediGuard terminal client.
//
// It wires configuration, the persisted session, the API client and an
// interactive REPL. Typical flow: restore the previous session, start a
// background connectivity watcher, then execute user commands.
//
// Key features:
//   - Register / Login / Logout
//   - Show the current user and refresh the profile from the API
//   - List and create medication reminders
//   - Submit and list symptom checks
//
// The session store is the single source of truth for who is logged in;
// the REPL renders from it and reports when the server ends a session.
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
