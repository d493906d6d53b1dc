// Package driving defines what the outer adapters (CLI, HTTP API, TUI and
// MCP server) may ask of foodsync. The implementations live in
// internal/core/services.
package driving
