// Package connectors holds the adapters that read remote catalog sources.
// Each subpackage implements driven.CatalogSource for one source type.
package connectors
