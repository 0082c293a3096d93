package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/schema"
)

type (
	Resolver interface {
		Resolve(chainID uint64) (l1.Settings, error)
	}

	Validator interface {
		ValidateAll(record map[string]any) (*schema.Candidate, error)
	}
)

// Decode parses a serialized bundle and re-validates it. The L1 keys must match
// what the resolver derives for the chain id.
func Decode(data []byte, validator Validator, resolver Resolver) (*Bundle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if record == nil {
		return nil, errors.New("failed to decode bundle: expected an object")
	}

	chainID, err := uintKey(record, KeyL1ChainID)
	if err != nil {
		return nil, err
	}
	blockTime, err := uintKey(record, KeyL1BlockTime)
	if err != nil {
		return nil, err
	}
	useClique, ok := record[KeyL1UseClique].(bool)
	if !ok {
		return nil, fmt.Errorf("bundle key %q must be a boolean", KeyL1UseClique)
	}

	settings, err := resolver.Resolve(chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle l1 chain: %w", err)
	}
	if blockTime != settings.BlockTimeSeconds {
		return nil, fmt.Errorf("bundle %s %d does not match l1 chain %d (%d)", KeyL1BlockTime, blockTime, chainID, settings.BlockTimeSeconds)
	}
	if useClique != settings.UseClique {
		return nil, fmt.Errorf("bundle %s %t does not match l1 chain %d", KeyL1UseClique, useClique, chainID)
	}

	delete(record, KeyL1ChainID)
	delete(record, KeyL1BlockTime)
	delete(record, KeyL1UseClique)

	candidate, err := validator.ValidateAll(record)
	if err != nil {
		return nil, fmt.Errorf("bundle fields are invalid: %w", err)
	}

	return New(settings, candidate)
}

func uintKey(record map[string]any, key string) (uint64, error) {
	raw, ok := record[key]
	if !ok {
		return 0, fmt.Errorf("bundle key %q is missing", key)
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("bundle key %q must be a number", key)
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bundle key %q: %w", key, err)
	}
	return v, nil
}
