// Package schema defines the record types shared by the store, the service API and the grid frontend.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// Record is one employee-like entry in the grid.
type Record struct {
	ID           int64      `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Email        string     `json:"email" yaml:"email"`
	Role         string     `json:"role" yaml:"role"`
	LastModified *time.Time `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
}

// NewRecord carries the caller-supplied fields of a record about to be created.
type NewRecord struct {
	Name  string `json:"name" form:"name" yaml:"name"`
	Email string `json:"email" form:"email" yaml:"email"`
	Role  string `json:"role" form:"role" yaml:"role"`
}

// Validate reports ErrValidation when any field is blank.
func (n NewRecord) Validate() error {
	var missing []string
	if strings.TrimSpace(n.Name) == "" {
		missing = append(missing, string(FieldName))
	}
	if strings.TrimSpace(n.Email) == "" {
		missing = append(missing, string(FieldEmail))
	}
	if strings.TrimSpace(n.Role) == "" {
		missing = append(missing, string(FieldRole))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// FieldUpdate is the body of a single-field update.
// Value is a pointer so an explicit empty string can be told apart from a missing value.
type FieldUpdate struct {
	Field string  `json:"field" binding:"required"`
	Value *string `json:"value" binding:"required"`
}

// Field names one editable attribute of a Record.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldRole  Field = "role"
)

// EditableFields lists every field that may be changed after creation, in column order.
var EditableFields = []Field{FieldName, FieldEmail, FieldRole}

// ParseField maps a raw field name onto the closed set of editable fields.
func ParseField(raw string) (Field, error) {
	switch f := Field(raw); f {
	case FieldName, FieldEmail, FieldRole:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, raw)
}

// Title is the column heading for the field.
func (f Field) Title() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldEmail:
		return "Email"
	case FieldRole:
		return "Role"
	}
	return string(f)
}

// Value returns the current value of field f.
func (r Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldEmail:
		return r.Email
	case FieldRole:
		return r.Role
	}
	return ""
}

// Set overwrites field f. Only editable fields are reachable; the id cannot be set this way.
func (r *Record) Set(f Field, value string) error {
	switch f {
	case FieldName:
		r.Name = value
	case FieldEmail:
		r.Email = value
	case FieldRole:
		r.Role = value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, string(f))
	}
	return nil
}
