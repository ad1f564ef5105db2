package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("resource not found")
	ErrNoQuiz              = errors.New("chapter has no quiz")
	ErrCourseNameTaken     = errors.New("course name already taken")
	ErrNotEnrolled         = errors.New("not enrolled in course")
	ErrInvalidCSRFToken    = errors.New("invalid csrf token")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Require returns a ValidationError naming every blank value in fields, or nil.
func Require(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ValidationError{Fields: missing}
}

// NotFoundf wraps ErrNotFound with the missing resource.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
