// Package errors defines the domain error taxonomy shared by services and
// HTTP handlers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// DomainError is a classified failure. Two DomainErrors match under
// errors.Is when their codes are equal, so callers can compare against the
// sentinels below even after a value has been attached with WithDetail.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of e carrying a formatted detail string.
func (e *DomainError) WithDetail(format string, args ...interface{}) *DomainError {
	cp := *e
	cp.Detail = fmt.Sprintf(format, args...)
	return &cp
}

// AsDomain extracts the DomainError from err's chain, if any.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}
