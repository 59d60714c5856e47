package errors

const (
	// Configuration
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"

	// Lifecycle
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Server
	ErrListen        ErrorCode = "listen_failed"
	ErrEncodeReply   ErrorCode = "encode_reply_failed"
	ErrServeShutdown ErrorCode = "serve_shutdown_failed"
)

var errorMessages = map[ErrorCode]string{
	ErrInvalidConfig:  "Invalid configuration",
	ErrBindFlags:      "Failed to bind flags",
	ErrReadConfig:     "Failed to read config file",
	ErrInitFailed:     "Initialization failed",
	ErrShutdownFailed: "Shutdown failed",
	ErrListen:         "Failed to listen",
	ErrEncodeReply:    "Failed to encode reply",
	ErrServeShutdown:  "Failed to shut down server",
}

// GetErrorMessage returns the human-readable text for code, or the code
// itself when none is registered.
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
