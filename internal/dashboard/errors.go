package dashboard

import "codeberg.org/mutker/energymon/internal/errors"

const (
	ErrRequestFailed = errors.ErrorCode("poll_request_failed")
	ErrBadStatus     = errors.ErrorCode("poll_bad_status")
	ErrMalformedBody = errors.ErrorCode("poll_malformed_body")
	ErrOffline       = errors.ErrorCode("poll_offline")
	ErrControlFailed = errors.ErrorCode("control_failed")
)
