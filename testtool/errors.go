package testtool

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	TOOL_ERR_UNKNOWN_CELL     ErrorCode = "TOOL_ERR_UNKNOWN_CELL"
	TOOL_ERR_UNKNOWN_CONTRACT ErrorCode = "TOOL_ERR_UNKNOWN_CONTRACT"
	TOOL_ERR_MOCK             ErrorCode = "TOOL_ERR_MOCK"
)

type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func toolErr(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// ErrUnexpectedPass is returned by ShouldFail when verification succeeds.
var ErrUnexpectedPass = errors.New("transaction verified but was expected to fail")
