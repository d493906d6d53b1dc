// Package services implements the driving ports on top of the driven ones.
//
// SyncOrchestrator is the import pipeline: it reads the remote listing,
// reconciles each file's records into the product store and records every
// file attempt in the run ledger. Scheduler triggers it periodically;
// ProductService, RunHistoryService and SettingsService back the CLI, the
// HTTP API, the TUI and the MCP server.
package services
