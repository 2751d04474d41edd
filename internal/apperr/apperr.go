package apperr

import (
	"errors"
	"fmt"
)

// Error codes, kept compatible with the handler envelope convention
// (NNNNN:message). 404xx not found, 400xx validation, 409xx conflicts.
const (
	CodeNotFound   = 40401
	CodeValidation = 40001
	CodeConflict   = 40901
	CodeTxConflict = 40902
)

// Error carries the entity and invariant behind a failed operation so the
// handler can render an actionable message without leaking storage details.
type Error struct {
	Code       int    `json:"code"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   uint   `json:"entity_id,omitempty"`
	Message    string `json:"message"`
	// Blocking lists the ids preventing a restrict-policy deletion.
	Blocking []uint `json:"blocking,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

func NotFound(entityType string, id uint, message string) *Error {
	return &Error{Code: CodeNotFound, EntityType: entityType, EntityID: id, Message: message}
}

func Validation(entityType, message string) *Error {
	return &Error{Code: CodeValidation, EntityType: entityType, Message: message}
}

// Conflict reports a restrict-policy violation; blocking names the rows the
// caller must resolve before retrying.
func Conflict(entityType string, id uint, message string, blocking []uint) *Error {
	return &Error{Code: CodeConflict, EntityType: entityType, EntityID: id, Message: message, Blocking: blocking}
}

// TxConflict reports a concurrent-write race detected by the store. Safe to
// retry after re-reading current state.
func TxConflict(message string) *Error {
	return &Error{Code: CodeTxConflict, Message: message}
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsNotFound(err error) bool   { return hasCode(err, CodeNotFound) }
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }
func IsConflict(err error) bool   { return hasCode(err, CodeConflict) }
func IsTxConflict(err error) bool { return hasCode(err, CodeTxConflict) }

func hasCode(err error, code int) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
