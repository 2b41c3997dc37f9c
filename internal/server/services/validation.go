package services

import (
	"strings"

	"github.com/dmitrijs2005/devconnector/internal/common"
)

const (
	MsgNameRequired      = "Name is required"
	MsgEmailInvalid      = "Email is not valid"
	MsgPasswordTooShort  = "Password must contain 6 or more characters"
	MsgPasswordTooLong   = "Password must contain 72 or fewer bytes"
	MsgPasswordRequired  = "Password is required"
	MsgUserExists        = "User already exists"
	MsgInvalidCredential = "Invalid credentials"
)

// FieldError is one failed input rule. Param names the offending field and
// may be empty for errors that are not tied to a single field.
type FieldError struct {
	Param string
	Msg   string
}

// ValidationError carries every violated rule of one request, in field order.
type ValidationError struct {
	Errors []FieldError
}

func newValidationError(param, msg string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Param: param, Msg: msg}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Msg
	}
	return "validation: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrorValidation
}

// NormalizeEmail is the canonical form stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
