// Package inspect uploads deployment artifacts to the inspection service and
// maps its responses into typed results.
package inspect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/deployconfig"
	"github.com/ethereum/go-ethereum/common"
)

type Kind string

const (
	KindContracts Kind = "contracts"
	KindInfra     Kind = "infra"
)

const (
	keyAddresses    = "addresses"
	keyDeployConfig = "deploy-config"
	keyOutputs      = "outputs"
)

var ErrUnknownKind = errors.New("unknown artifact kind")

func Kinds() []Kind {
	return []Kind{KindContracts, KindInfra}
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindContracts, KindInfra:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q (must be %q or %q)", ErrUnknownKind, s, KindContracts, KindInfra)
	}
}

type (
	// Result is the decoded inspection of one artifact. Contracts results fill
	// Addresses and DeployConfig, infra results fill Outputs. Mappings are never
	// nil.
	Result struct {
		Kind         Kind              `json:"kind" yaml:"kind"`
		Addresses    map[string]string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
		DeployConfig map[string]any    `json:"deployConfig,omitempty" yaml:"deploy-config,omitempty"`
		Outputs      map[string]any    `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	}

	// Entry is one displayable row of a result.
	Entry struct {
		Key   string
		Value any
	}

	// Section groups entries under a heading, keys sorted.
	Section struct {
		Title   string
		Entries []Entry
	}
)

// Sections returns the result in display order.
func (r *Result) Sections() []Section {
	switch r.Kind {
	case KindContracts:
		addresses := make(map[string]any, len(r.Addresses))
		for k, v := range r.Addresses {
			addresses[k] = v
		}
		return []Section{
			section("Addresses", addresses),
			section("Deploy config", r.DeployConfig),
		}
	case KindInfra:
		return []Section{section("Outputs", r.Outputs)}
	default:
		return nil
	}
}

func section(title string, m map[string]any) Section {
	s := Section{Title: title}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		s.Entries = append(s.Entries, Entry{Key: k, Value: m[k]})
	}
	return s
}

// decodeResult maps a response body onto a Result. Missing or null keys become
// empty mappings; keys of the wrong shape make the response malformed.
func decodeResult(kind Kind, body []byte, c *catalog.Catalog) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("response is not a JSON object")
	}

	result := &Result{Kind: kind}

	switch kind {
	case KindContracts:
		var addrs map[string]string
		if err := decodeKey(raw, keyAddresses, &addrs); err != nil {
			return nil, err
		}
		result.Addresses = make(map[string]string, len(addrs))
		for name, addr := range addrs {
			result.Addresses[name] = checksum(addr)
		}

		var deployConfig map[string]any
		if err := decodeKey(raw, keyDeployConfig, &deployConfig); err != nil {
			return nil, err
		}
		result.DeployConfig = deployconfig.Normalize(c, deployConfig)
	case KindInfra:
		var outputs map[string]any
		if err := decodeKey(raw, keyOutputs, &outputs); err != nil {
			return nil, err
		}
		if outputs == nil {
			outputs = map[string]any{}
		}
		result.Outputs = outputs
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}

	return result, nil
}

func decodeKey(raw map[string]json.RawMessage, key string, dst any) error {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	if err := decodeJSON(data, dst); err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return nil
}

func decodeJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

// checksum normalises well-formed addresses to their EIP-55 form and leaves
// anything else untouched.
func checksum(addr string) string {
	if !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}
