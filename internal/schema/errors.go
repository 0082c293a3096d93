package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Reason classifies a FieldError.
type Reason string

const (
	ReasonRequired      Reason = "required"
	ReasonWrongType     Reason = "wrong_type"
	ReasonMissingPrefix Reason = "missing_prefix"
	ReasonUnknownField  Reason = "unknown_field"
)

type (
	// FieldError reports one field violating one rule.
	FieldError struct {
		Field   string `json:"field"`
		Reason  Reason `json:"reason"`
		Message string `json:"message"`
	}

	// ConfigurationError reports a field that has neither a supplied value nor
	// a system default to fall back on.
	ConfigurationError struct {
		Field string `json:"field"`
	}

	// Errors is the complete set of problems found in one record. It is never
	// truncated to the first failure.
	Errors struct {
		Fields        map[string]*FieldError         `json:"fields,omitempty"`
		Configuration map[string]*ConfigurationError `json:"configuration,omitempty"`
	}
)

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: required field has neither a supplied value nor a system default", e.Field)
}

func NewErrors() *Errors {
	return &Errors{
		Fields:        make(map[string]*FieldError),
		Configuration: make(map[string]*ConfigurationError),
	}
}

func (e *Errors) AddField(err *FieldError) {
	e.Fields[err.Field] = err
}

// AddConfiguration records a configuration error for the field, replacing any
// field error previously reported for it.
func (e *Errors) AddConfiguration(field string) {
	delete(e.Fields, field)
	e.Configuration[field] = &ConfigurationError{Field: field}
}

func (e *Errors) Len() int {
	return len(e.Fields) + len(e.Configuration)
}

// IDs returns every failing field id, sorted.
func (e *Errors) IDs() []string {
	ids := slices.Collect(maps.Keys(e.Fields))
	ids = append(ids, slices.Collect(maps.Keys(e.Configuration))...)
	slices.Sort(ids)
	return ids
}

// Unwrap exposes every collected error so errors.As can find a specific
// FieldError or ConfigurationError. Configuration errors come first.
func (e *Errors) Unwrap() []error {
	errs := make([]error, 0, e.Len())
	for _, id := range slices.Sorted(maps.Keys(e.Configuration)) {
		errs = append(errs, e.Configuration[id])
	}
	for _, id := range slices.Sorted(maps.Keys(e.Fields)) {
		errs = append(errs, e.Fields[id])
	}
	return errs
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, e.Len())
	for _, err := range e.Unwrap() {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d invalid field(s): %s", e.Len(), strings.Join(msgs, "; "))
}
