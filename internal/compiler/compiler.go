// Package compiler turns a raw operator record and an L1 chain id into a
// validated configuration bundle.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/logger"
	"github.com/compose-network/rollup-configurator/internal/schema"
)

type (
	Resolver interface {
		Resolve(chainID uint64) (l1.Settings, error)
	}

	Validator interface {
		Catalog() *catalog.Catalog
		Default(fieldID string) (any, bool)
		ValidateAll(record map[string]any) (*schema.Candidate, error)
	}

	Compiler struct {
		resolver  Resolver
		validator Validator
		logger    *slog.Logger
	}
)

func New(resolver Resolver, validator Validator) *Compiler {
	return &Compiler{
		resolver:  resolver,
		validator: validator,
		logger:    logger.Named("compiler"),
	}
}

// NewDefault wires the built-in L1 list and the embedded catalog schema.
func NewDefault() *Compiler {
	return New(l1.NewResolver(), schema.Default())
}

// Compile resolves the L1 chain, fills absent fields from their system
// defaults and validates the full set. It either returns a bundle or every
// problem found: an unsupported chain stops compilation before any field is
// looked at, otherwise the error is a *schema.Errors.
func (c *Compiler) Compile(raw map[string]any, chainID uint64) (*bundle.Bundle, error) {
	log := c.logger.With("l1_chain_id", chainID)

	settings, err := c.resolver.Resolve(chainID)
	if err != nil {
		log.With("err", err.Error()).Warn("l1 chain rejected")
		return nil, fmt.Errorf("failed to resolve l1 chain: %w", err)
	}

	record := make(map[string]any, len(raw))
	maps.Copy(record, raw)

	var missing []string
	defaulted := 0
	for _, id := range c.validator.Catalog().IDs() {
		if _, ok := record[id]; ok {
			continue
		}
		if def, ok := c.validator.Default(id); ok {
			record[id] = def
			defaulted++
			continue
		}
		missing = append(missing, id)
	}

	candidate, err := c.validator.ValidateAll(record)
	if err != nil || len(missing) > 0 {
		errs := schema.NewErrors()
		if err != nil && !errors.As(err, &errs) {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
		for _, id := range missing {
			errs.AddConfiguration(id)
		}

		log.With("invalid_fields", errs.IDs()).Debug("configuration rejected")
		return nil, errs
	}

	b, err := bundle.New(settings, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble bundle: %w", err)
	}

	log.With("fields", len(b.FieldIDs()), "defaulted", defaulted).Debug("configuration compiled")

	return b, nil
}
