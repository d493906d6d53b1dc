package domain

import "time"

// StorageHealth is the outcome of a storage health check.
type StorageHealth struct {
	Connected bool
	Readable  bool
	Writable  bool
	Latency   time.Duration
	Err       error
}

// Healthy returns true when the store answered every check.
func (h StorageHealth) Healthy() bool {
	return h.Connected && h.Readable && h.Writable && h.Err == nil
}
