// Package mcp provides an MCP (Model Context Protocol) server adapter for foodsync.
// It lets AI assistants browse the local catalog and trigger imports.
package mcp

import "errors"

// ErrMissingProductService is returned when the product service is not provided.
var ErrMissingProductService = errors.New("mcp: product service is required")
