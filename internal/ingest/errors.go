package ingest

import "codeberg.org/mutker/energymon/internal/errors"

const (
	ErrBrokerConnect = errors.ErrorCode("ingest_broker_connect_failed")
	ErrSubscribe     = errors.ErrorCode("ingest_subscribe_failed")
)
