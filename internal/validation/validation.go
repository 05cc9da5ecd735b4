package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors collects every field problem found in one request.
type Errors struct {
	Errors []FieldError `json:"errors"`
}

func (v *Errors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation error"
	}
	messages := make([]string, 0, len(v.Errors))
	for _, fe := range v.Errors {
		messages = append(messages, fe.Message)
	}
	return strings.Join(messages, "; ")
}

func (v *Errors) Add(field, code, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Code: code, Message: message})
}

// Required records a missing_field error when value is blank.
func (v *Errors) Required(field, value string) bool {
	if strings.TrimSpace(value) != "" {
		return true
	}
	v.Add(field, "missing_field", fmt.Sprintf("Missing required field: %s", field))
	return false
}

// OneOf records an invalid_choice error when value is not in allowed.
func (v *Errors) OneOf(field, value string, allowed ...string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	v.Add(field, "invalid_choice", fmt.Sprintf("Invalid value for %s: must be one of %s", field, strings.Join(allowed, ", ")))
	return false
}

// Email records an invalid_email error when value is not a bare address.
func (v *Errors) Email(field, value string) bool {
	if IsEmail(value) {
		return true
	}
	v.Add(field, "invalid_email", fmt.Sprintf("Invalid email address: %s", field))
	return false
}

func (v *Errors) Empty() bool {
	return v == nil || len(v.Errors) == 0
}

// Err returns nil when nothing was collected.
func (v *Errors) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func New(field, code, message string) error {
	return &Errors{Errors: []FieldError{{Field: field, Code: code, Message: message}}}
}

func As(err error) (*Errors, bool) {
	var vErr *Errors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr, true
	}
	return nil, false
}

func IsEmail(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
