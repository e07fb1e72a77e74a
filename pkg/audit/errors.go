package audit

import "errors"

var (
	// ErrEventValidation indicates event validation failed.
	ErrEventValidation = errors.New("audit.event_validation_failed")

	// ErrStorageNotAvailable indicates the storage backend could not accept the event.
	ErrStorageNotAvailable = errors.New("audit.storage_unavailable")
)
