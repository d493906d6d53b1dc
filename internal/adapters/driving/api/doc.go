// Package api is the HTTP read and edit surface of the catalog.
//
// The router is built on gin. Every route except the GET / health check
// requires the configured API key in an X-API-KEY header or as a bearer
// token. The key can be swapped at runtime with Server.SetAPIKey.
package api
