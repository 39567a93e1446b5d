package fixture

import "fmt"

type ErrorCode string

const (
	FIXTURE_ERR_INDEX_OUT_OF_RANGE ErrorCode = "FIXTURE_ERR_INDEX_OUT_OF_RANGE"
	FIXTURE_ERR_MISSING_TYPE_ARG   ErrorCode = "FIXTURE_ERR_MISSING_TYPE_ARG"
	FIXTURE_ERR_NO_LOADER          ErrorCode = "FIXTURE_ERR_NO_LOADER"
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

func fixtureErr(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func indexErr(op string, index, n int) error {
	return fixtureErr(FIXTURE_ERR_INDEX_OUT_OF_RANGE, "%s: index %d out of range (%d outputs)", op, index, n)
}
