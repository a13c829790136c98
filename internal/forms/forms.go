// Package forms validates user input before any network call. Violations
// come back as *Error values the UI reports locally; the server never sees
// a request that fails these checks.
package forms

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Login is the sign-in form.
type Login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register is the account-creation form. The password cap matches the
// server's 72-byte bcrypt limit.
type Register struct {
	Email    string `validate:"required,email"`
	FullName string `validate:"required"`
	Password string `validate:"required,min=8,max=72"`
	Confirm  string `validate:"required,eqfield=Password"`
}

// ForgotPassword requests a reset link.
type ForgotPassword struct {
	Email string `validate:"required,email"`
}

// ResetPassword sets a new password.
type ResetPassword struct {
	Email       string `validate:"required,email"`
	NewPassword string `validate:"required,min=8,max=72"`
	Confirm     string `validate:"required,eqfield=NewPassword"`
}

// DriveFolder records the external folder reference.
type DriveFolder struct {
	FolderID string `validate:"required"`
}

// Error is a client-side precondition failure; nothing was sent.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var formErr *Error
	return errors.As(err, &formErr)
}

// Check validates a form and returns the first violation as an *Error.
func Check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) || len(violations) == 0 {
		return err
	}
	first := violations[0]
	return &Error{Field: first.Field(), Message: messageFor(first)}
}

// Document types the server can index. Anything else is rejected before any
// bytes leave the machine.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".csv":  true,
	".doc":  true,
	".docx": true,
}

// CheckUpload validates a candidate file path for upload.
func CheckUpload(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return &Error{Field: "File", Message: "choose a file to upload"}
	}
	ext := strings.ToLower(filepath.Ext(trimmed))
	if ext == "" {
		return &Error{Field: "File", Message: "file has no extension; use PDF, CSV, or Word documents"}
	}
	if !allowedExtensions[ext] {
		return &Error{Field: "File", Message: fmt.Sprintf("unsupported file type %q; use PDF, CSV, or Word documents", ext)}
	}
	return nil
}

func messageFor(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldLabel(violation.Field()))
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fieldLabel(violation.Field()), violation.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldLabel(violation.Field()), violation.Param())
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", fieldLabel(violation.Field()))
	}
}

var fieldLabels = map[string]string{
	"Email":       "email",
	"FullName":    "full name",
	"Password":    "password",
	"NewPassword": "new password",
	"Confirm":     "password confirmation",
	"FolderID":    "folder ID",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return strings.ToLower(field)
}
