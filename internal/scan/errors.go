package scan

import "errors"

var (
	// ErrAllocation rejects a scan whose buffers cannot be sized. Nothing
	// is programmed and the previous session is left intact.
	ErrAllocation = errors.New("scan: invalid buffer size")
	// ErrUnknownHandle is returned for a handle that is not the active
	// session.
	ErrUnknownHandle = errors.New("scan: unknown handle")
	// ErrBusy is returned when a scan is already running.
	ErrBusy = errors.New("scan: scan in progress")
)
