package vm

import (
	"errors"
	"fmt"

	"cellkit.dev/harness/chain"
)

type ErrorKind string

const (
	VM_ERR_VALIDATION_FAILURE  ErrorKind = "VM_ERR_VALIDATION_FAILURE"
	VM_ERR_EXCEEDED_MAX_CYCLES ErrorKind = "VM_ERR_EXCEEDED_MAX_CYCLES"
	VM_ERR_SCRIPT_NOT_FOUND    ErrorKind = "VM_ERR_SCRIPT_NOT_FOUND"
	VM_ERR_INVALID_SCRIPT      ErrorKind = "VM_ERR_INVALID_SCRIPT"
	VM_ERR_TRAP                ErrorKind = "VM_ERR_TRAP"
	VM_ERR_RESOLVE             ErrorKind = "VM_ERR_RESOLVE"
)

type GroupType string

const (
	LockGroup GroupType = "lock"
	TypeGroup GroupType = "type"
)

// ScriptError is a verification failure. For VM_ERR_VALIDATION_FAILURE,
// Code is the non-zero value the script returned.
type ScriptError struct {
	Kind       ErrorKind
	Code       int32
	ScriptHash chain.Hash
	GroupType  GroupType
	GroupIndex int
	Msg        string
}

func (e *ScriptError) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Kind)
	if e.GroupType != "" {
		s += fmt.Sprintf(": %s script %s (group %d)", e.GroupType, e.ScriptHash, e.GroupIndex)
	}
	if e.Kind == VM_ERR_VALIDATION_FAILURE {
		s += fmt.Sprintf(" exit code %d", e.Code)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// IsKind reports whether err is a ScriptError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var se *ScriptError
	return errors.As(err, &se) && se.Kind == k
}

// ExitCode extracts the script's reason code from a validation failure.
func ExitCode(err error) (int32, bool) {
	var se *ScriptError
	if !errors.As(err, &se) || se.Kind != VM_ERR_VALIDATION_FAILURE {
		return 0, false
	}
	return se.Code, true
}
