// Package client holds the terminal-side session guard: a local token cache, a thin
// HTTP client for the auth API, and Guard, which decides whether a role-restricted
// view may be opened.
package client
