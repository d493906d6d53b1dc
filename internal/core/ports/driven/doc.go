// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - CatalogSource: Reads the remote bulk catalog (listing and files)
//   - ProductStore: Product persistence keyed by product code
//   - RunLedger: One entry per file-processing attempt
//   - SchedulerStore: Scheduled task state and execution history
//   - ConfigStore: Application configuration
//   - StorageProbe: Database read/write checks for the health endpoint
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
