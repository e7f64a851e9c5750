// Package apperr holds the sentinel errors shared across psg packages.
package apperr

import "errors"

var (
	ErrMissingTemplate = errors.New("template fragment missing")
	ErrMissingSource   = errors.New("source directory missing")
	ErrOutputMissing   = errors.New("output directory does not exist")
	ErrJournalDisabled = errors.New("build journal is not configured")
	ErrUsage           = errors.New("usage requested")
)
