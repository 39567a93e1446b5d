package store

import "fmt"

type ErrorCode string

const (
	STORE_ERR_EXISTS  ErrorCode = "STORE_ERR_EXISTS"
	STORE_ERR_CORRUPT ErrorCode = "STORE_ERR_CORRUPT"
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

func storeErr(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
