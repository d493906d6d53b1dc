// Package domain defines the core business entities for foodsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product: A catalog entry keyed by its product code
//   - FeedRecord: One loosely-typed record from the remote bulk feed
//   - RunEntry: The ledger record of one file's processing attempt
//   - ImportResult: The aggregate outcome of one import run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
