package offline

import "codeberg.org/mutker/energymon/internal/errors"

const (
	// Lifecycle Errors
	ErrInstallFailed  = errors.ErrorCode("cache_install_failed")
	ErrActivateFailed = errors.ErrorCode("cache_activate_failed")
	ErrPrefetchFailed = errors.ErrorCode("cache_prefetch_failed")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("cache_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("cache_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("cache_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("cache_transaction_failed")

	// Storage Errors
	ErrInvalidDBPath = errors.ErrorCode("cache_invalid_db_path")
	ErrStorageAccess = errors.ErrorCode("cache_storage_access_failed")
	ErrStorageInit   = errors.ErrInitFailed
	ErrStorageClose  = errors.ErrShutdownFailed
)
