// Package schema derives per-field validation rules from the parameter catalog.
// Rules are field-local: no field's validity depends on another field.
package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/compose-network/rollup-configurator/internal/catalog"
)

type (
	// Schema holds exactly one rule per catalog parameter.
	Schema struct {
		catalog  *catalog.Catalog
		rules    map[string]rule
		defaults map[string]any
	}

	// Candidate is a complete, fully validated field set. Only ValidateAll
	// can produce one.
	Candidate struct {
		values map[string]Value
		order  []string
	}
)

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default returns the schema generated from the embedded catalog.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := New(catalog.Default())
		if err != nil {
			panic(fmt.Errorf("failed to generate schema from embedded catalog: %w", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

// New generates the rule set from the catalog. Every declared system default
// must itself satisfy its field's rule.
func New(c *catalog.Catalog) (*Schema, error) {
	s := &Schema{
		catalog:  c,
		rules:    make(map[string]rule, c.Len()),
		defaults: make(map[string]any),
	}

	var errs []error
	for _, p := range c.Parameters() {
		r, err := ruleFor(p.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("parameter %q: %w", p.ID, err))
			continue
		}
		s.rules[p.ID] = r

		if p.SystemDefault == nil {
			continue
		}
		if _, reason, msg := r(p.SystemDefault); reason != "" {
			errs = append(errs, fmt.Errorf("parameter %q: system default %v %s", p.ID, p.SystemDefault, msg))
			continue
		}
		s.defaults[p.ID] = p.SystemDefault
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return s, nil
}

func (s *Schema) Catalog() *catalog.Catalog {
	return s.catalog
}

// Defaults returns the system default for every field that declares one.
func (s *Schema) Defaults() map[string]any {
	return maps.Clone(s.defaults)
}

// Default returns the system default of a single field.
func (s *Schema) Default(fieldID string) (any, bool) {
	v, ok := s.defaults[fieldID]
	return v, ok
}

// Validate checks a single raw value. The returned error, if any, is a
// *FieldError.
func (s *Schema) Validate(fieldID string, raw any) (Value, error) {
	r, ok := s.rules[fieldID]
	if !ok {
		return Value{}, &FieldError{Field: fieldID, Reason: ReasonUnknownField, Message: "is not a known parameter"}
	}

	v, reason, msg := r(raw)
	if reason != "" {
		return Value{}, &FieldError{Field: fieldID, Reason: reason, Message: msg}
	}

	return v, nil
}

// ValidateAll validates a full record against every catalog field. Absent
// fields are reported as required, keys outside the catalog as unknown. The
// returned error, if any, is an *Errors holding every failure.
func (s *Schema) ValidateAll(record map[string]any) (*Candidate, error) {
	errs := NewErrors()
	values := make(map[string]Value, s.catalog.Len())

	for _, id := range s.catalog.IDs() {
		raw, present := record[id]
		if !present {
			errs.AddField(&FieldError{Field: id, Reason: ReasonRequired, Message: "is required"})
			continue
		}

		v, err := s.Validate(id, raw)
		if err != nil {
			var fieldErr *FieldError
			if errors.As(err, &fieldErr) {
				errs.AddField(fieldErr)
			}
			continue
		}
		values[id] = v
	}

	for _, key := range slices.Sorted(maps.Keys(record)) {
		if _, known := s.rules[key]; !known {
			errs.AddField(&FieldError{Field: key, Reason: ReasonUnknownField, Message: "is not a known parameter"})
		}
	}

	if errs.Len() > 0 {
		return nil, errs
	}

	return &Candidate{values: values, order: s.catalog.IDs()}, nil
}

func (c *Candidate) Get(fieldID string) (Value, bool) {
	v, ok := c.values[fieldID]
	return v, ok
}

// IDs returns the field ids in catalog order.
func (c *Candidate) IDs() []string {
	return slices.Clone(c.order)
}

func (c *Candidate) Values() map[string]Value {
	return maps.Clone(c.values)
}

func (c *Candidate) Len() int {
	return len(c.values)
}
