package domain

import "errors"

var (
	// ErrConfigNotFound is returned when a configuration key does not exist.
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrRecordNotFound is returned when an update targets an unknown record ID.
	ErrRecordNotFound = errors.New("record not found")
	// ErrAlreadyResolved is returned when a second enrichment outcome is applied
	// to a record that already reached a terminal state.
	ErrAlreadyResolved = errors.New("record already resolved")
	// ErrFeatureDisabled is returned when quiz extraction is switched off.
	ErrFeatureDisabled = errors.New("quiz extraction feature is currently disabled")
	// ErrEmptyHTML is returned when an extraction request carries no HTML.
	ErrEmptyHTML = errors.New("html content is required")
)
