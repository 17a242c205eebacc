package cim

import (
	"errors"
	"fmt"
)

// StatusCode is a DMTF CIM status code. The engine reports every failure
// through this closed set; higher layers propagate codes unchanged.
type StatusCode int

// CIM status codes (DMTF numbering).
const (
	StatusFailed                    StatusCode = 1
	StatusInvalidNamespace          StatusCode = 3
	StatusInvalidParameter          StatusCode = 4
	StatusInvalidClass              StatusCode = 5
	StatusNotFound                  StatusCode = 6
	StatusNotSupported              StatusCode = 7
	StatusAlreadyExists             StatusCode = 11
	StatusMethodNotAvailable        StatusCode = 16
	StatusInvalidEnumerationContext StatusCode = 21
)

var statusNames = map[StatusCode]string{
	StatusFailed:                    "CIM_ERR_FAILED",
	StatusInvalidNamespace:          "CIM_ERR_INVALID_NAMESPACE",
	StatusInvalidParameter:          "CIM_ERR_INVALID_PARAMETER",
	StatusInvalidClass:              "CIM_ERR_INVALID_CLASS",
	StatusNotFound:                  "CIM_ERR_NOT_FOUND",
	StatusNotSupported:              "CIM_ERR_NOT_SUPPORTED",
	StatusAlreadyExists:             "CIM_ERR_ALREADY_EXISTS",
	StatusMethodNotAvailable:        "CIM_ERR_METHOD_NOT_AVAILABLE",
	StatusInvalidEnumerationContext: "CIM_ERR_INVALID_ENUMERATION_CONTEXT",
}

// String returns the DMTF symbolic name of the code.
func (c StatusCode) String() string {
	if n, ok := statusNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CIM_ERR(%d)", int(c))
}

// Error is a CIM operation failure carrying a status code.
type Error struct {
	Code    StatusCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a CIM error with a formatted message.
func NewError(code StatusCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// StatusOf extracts the status code from an error chain.
// Non-CIM errors report StatusFailed; nil reports 0.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return StatusFailed
}

// IsStatus reports whether err carries the given CIM status code.
func IsStatus(err error, code StatusCode) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}
