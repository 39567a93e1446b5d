package codec

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CODEC_ERR_DECODE           ErrorCode = "CODEC_ERR_DECODE"
	CODEC_ERR_TRAILING_BYTES   ErrorCode = "CODEC_ERR_TRAILING_BYTES"
	CODEC_ERR_MODE_MISMATCH    ErrorCode = "CODEC_ERR_MODE_MISMATCH"
	CODEC_ERR_UNSUPPORTED_TYPE ErrorCode = "CODEC_ERR_UNSUPPORTED_TYPE"
	CODEC_ERR_ENCODE           ErrorCode = "CODEC_ERR_ENCODE"
)

// Error is returned by every codec entry point. Path names the field that
// failed, e.g. "Witness.PendingHTLCs[1].Expiry"; it is empty for the top-level value.
type Error struct {
	Code  ErrorCode
	Path  string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Code)
	if e.Path != "" {
		s += " at " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func codecErr(code ErrorCode, path string, format string, args ...any) error {
	return &Error{Code: code, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err carries a codec error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == code
}
