package types

import "errors"

var (
	ErrNoLocation     = errors.New("no location found for this bus")
	ErrBlankBusNumber = errors.New("busNumber parameter is required")

	ErrStorageFailed = errors.New("storage operation failed")
)
