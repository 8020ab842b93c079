// Package types defines the backend resource models shared across the
// dashboard: workspaces, collections, requests, environments, mock servers
// and routes, mock logs, history entries and the user profile.
package types
