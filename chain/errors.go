package chain

import "fmt"

type ErrorCode string

const (
	TX_ERR_PARSE                 ErrorCode = "TX_ERR_PARSE"
	TX_ERR_ENCODE                ErrorCode = "TX_ERR_ENCODE"
	TX_ERR_OUTPUTS_DATA_MISMATCH ErrorCode = "TX_ERR_OUTPUTS_DATA_MISMATCH"
)

type TxError struct {
	Code  ErrorCode
	Msg   string
	Cause error
}

func (e *TxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Code)
	if e.Msg != "" {
		s = fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *TxError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func txerr(code ErrorCode, msg string, cause error) error {
	return &TxError{Code: code, Msg: msg, Cause: cause}
}
