package host

import (
	"errors"
	"fmt"
)

// builtinShift places host errors above every custom program code so both
// live in a single numeric space.
const builtinShift = 32

// Set of builtin host error codes.
const (
	CodeInvalidArgument        uint64 = 2 << builtinShift
	CodeInvalidInstructionData uint64 = 3 << builtinShift
	CodeIncorrectProgramID     uint64 = 7 << builtinShift
	CodeMissingSignature       uint64 = 8 << builtinShift
	CodeNotEnoughAccountKeys   uint64 = 11 << builtinShift
	CodeAccountBorrowFailed    uint64 = 12 << builtinShift
)

// Set of builtin host errors.
var (
	ErrInvalidInstructionData = &ProgramError{Code: CodeInvalidInstructionData, Msg: "invalid instruction data"}
	ErrIncorrectProgramID     = &ProgramError{Code: CodeIncorrectProgramID, Msg: "incorrect program id"}
	ErrMissingSignature       = &ProgramError{Code: CodeMissingSignature, Msg: "missing required signature"}
	ErrNotEnoughAccountKeys   = &ProgramError{Code: CodeNotEnoughAccountKeys, Msg: "not enough account keys"}
	ErrAccountBorrowFailed    = &ProgramError{Code: CodeAccountBorrowFailed, Msg: "account borrow failed"}
)

// ProgramError is the error surfaced at the host boundary. Two program
// errors are the same error when their codes match.
type ProgramError struct {
	Code uint64
	Msg  string
}

// Custom constructs a program error carrying a program defined code.
func Custom(code uint32, msg string) *ProgramError {
	return &ProgramError{Code: uint64(code), Msg: msg}
}

// InvalidArgument constructs an invalid argument error with context.
func InvalidArgument(format string, args ...any) *ProgramError {
	return &ProgramError{Code: CodeInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (pe *ProgramError) Error() string {
	if pe.IsCustom() {
		return fmt.Sprintf("custom program error %d: %s", pe.Code, pe.Msg)
	}
	return pe.Msg
}

// Is supports errors.Is by comparing codes.
func (pe *ProgramError) Is(target error) bool {
	var t *ProgramError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == pe.Code
}

// IsCustom reports whether the code was defined by the program.
func (pe *ProgramError) IsCustom() bool {
	return pe.Code < 1<<builtinShift
}

// Code extracts the numeric code from err. It returns false when err does
// not carry a program error.
func Code(err error) (uint64, bool) {
	var pe *ProgramError
	if !errors.As(err, &pe) {
		return 0, false
	}
	return pe.Code, true
}
