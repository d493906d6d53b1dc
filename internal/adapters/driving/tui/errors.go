package tui

import "errors"

// ErrMissingProductService is returned when the product service is not provided.
var ErrMissingProductService = errors.New("tui: product service is required")

// ErrMissingRunHistory is returned when the run history is not provided.
var ErrMissingRunHistory = errors.New("tui: run history is required")
