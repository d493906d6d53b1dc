// Package openfoodfacts reads the Open Food Facts bulk export over HTTP.
//
// The export is a directory holding an index.txt listing and one JSON file
// per listed name, each an array of flat product objects. Files may be
// gzip-compressed.
//
// The Client implements driven.CatalogSource. Every request goes through a
// token-bucket RateLimiter and a bounded retry loop; errors that survive the
// retry loop are *TransportError values, unparseable payloads are
// *DecodeError values and are returned without retrying.
package openfoodfacts
