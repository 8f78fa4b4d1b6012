package domain

import (
	"fmt"
	"strings"
)

const MaxNameLen = 200

// ValidationError reports a payload field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "required")
	}
	if len(name) > MaxNameLen {
		return invalid("name", "longer than %d characters", MaxNameLen)
	}
	return nil
}

func (l NewLocation) Validate() error {
	if err := validateName(l.Name); err != nil {
		return err
	}
	if !l.Pavilion.Valid() {
		return invalid("pavilion", "unknown pavilion %q", l.Pavilion)
	}
	if l.Floor < 1 {
		return invalid("floor", "must be at least 1")
	}
	if !l.Type.Valid() {
		return invalid("type", "unknown location type %q", l.Type)
	}
	return nil
}

func (i NewItem) Validate() error {
	if err := validateName(i.Name); err != nil {
		return err
	}
	if _, ok := CategoryByID(i.Category); !ok {
		return invalid("category", "unknown category %q", i.Category)
	}
	if !i.Status.Valid() {
		return invalid("status", "unknown status %q", i.Status)
	}
	return nil
}

func (u ItemUpdate) Validate() error {
	if u.Empty() {
		return invalid("update", "no fields to update")
	}
	if u.Name != nil {
		if err := validateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Category != nil {
		if _, ok := CategoryByID(*u.Category); !ok {
			return invalid("category", "unknown category %q", *u.Category)
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return invalid("status", "unknown status %q", *u.Status)
	}
	return nil
}
