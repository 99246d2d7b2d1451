package errors

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// OperationalError wraps a failure with the form and field it happened in.
//
// Form loading and source extraction return it so a caller can report
// which definition and which field went wrong without parsing error strings.
type OperationalError struct {
	Operation  string         // What was being done, e.g. "evaluating formula"
	FormID     string         // Which form
	FieldID    string         // Which field (if applicable)
	Timestamp  time.Time      // When the error occurred
	Attributes map[string]any // Additional context (optional)
	Cause      error          // Underlying error
}

// NewOperationalError creates an OperationalError wrapping cause.
//
// Returns nil if cause is nil.
//
// Example:
//
//	if err := field.SetValue(v); err != nil {
//	    return NewOperationalError("applying source", form.ID, spec.ID, err)
//	}
func NewOperationalError(operation, formID, fieldID string, cause error) *OperationalError {
	return NewOperationalErrorWithAttrs(operation, formID, fieldID, cause, nil)
}

// NewOperationalErrorWithAttrs creates an OperationalError with additional
// attributes. Returns nil if cause is nil.
func NewOperationalErrorWithAttrs(operation, formID, fieldID string, cause error, attrs map[string]any) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation:  operation,
		FormID:     formID,
		FieldID:    fieldID,
		Timestamp:  time.Now(),
		Attributes: attrs,
		Cause:      cause,
	}
}

// Error implements the error interface.
//
// Format: "operation: form={id} field={id} [k=v ...]: {cause}". The field
// is omitted when empty.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: form=%s", e.Operation, e.FormID)
	if e.FieldID != "" {
		fmt.Fprintf(&b, " field=%s", e.FieldID)
	}

	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attributes[k])
	}

	fmt.Fprintf(&b, ": %v", e.Cause)
	return b.String()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
