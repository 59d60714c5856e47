package errors

// ErrorCode is the stable, machine-readable name of a failure. Log lines
// carry it as error_code.
type ErrorCode string

// Error is a coded error. WithMessage and WithData return copies; the
// receiver is never modified.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	Data() any
	Unwrap() error
}

// Factory builds coded errors. Use New() to get one.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
