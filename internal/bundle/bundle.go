// Package bundle defines the compiled configuration submitted for a build.
package bundle

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/output"
	"github.com/compose-network/rollup-configurator/internal/schema"
)

const (
	KeyL1ChainID   = "l1_chain_id"
	KeyL1BlockTime = "l1_block_time"
	KeyL1UseClique = "l1_use_clique"
)

// Bundle is immutable once built. It merges the L1-derived settings with every
// validated catalog field.
type Bundle struct {
	l1     l1.Settings
	values map[string]schema.Value
	order  []string
}

// New merges resolved L1 settings with a validated candidate.
func New(settings l1.Settings, candidate *schema.Candidate) (*Bundle, error) {
	if candidate == nil {
		return nil, errors.New("bundle requires a validated candidate")
	}
	if !settings.UseClique {
		return nil, fmt.Errorf("l1 chain %d: clique must be enabled", settings.ChainID)
	}

	return &Bundle{
		l1:     settings,
		values: candidate.Values(),
		order:  candidate.IDs(),
	}, nil
}

func (b *Bundle) L1() l1.Settings     { return b.l1 }
func (b *Bundle) L1ChainID() uint64   { return b.l1.ChainID }
func (b *Bundle) L1BlockTime() uint64 { return b.l1.BlockTimeSeconds }
func (b *Bundle) L1UseClique() bool   { return b.l1.UseClique }

// FieldIDs returns the catalog field ids in catalog order.
func (b *Bundle) FieldIDs() []string {
	return slices.Clone(b.order)
}

func (b *Bundle) Fields() map[string]schema.Value {
	return maps.Clone(b.values)
}

func (b *Bundle) Get(fieldID string) (schema.Value, bool) {
	v, ok := b.values[fieldID]
	return v, ok
}

// Keys returns every serialized key: the three L1 keys followed by the catalog
// fields in catalog order.
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.order)+3)
	keys = append(keys, KeyL1ChainID, KeyL1BlockTime, KeyL1UseClique)
	return append(keys, b.order...)
}

func (b *Bundle) Equal(other *Bundle) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.l1 == other.l1 &&
		slices.Equal(b.order, other.order) &&
		maps.Equal(b.values, other.values)
}

// Object returns the bundle as a flat mapping in Keys order.
func (b *Bundle) Object() output.Object {
	obj := make(output.Object, 0, len(b.order)+3)
	obj = append(obj,
		output.Field{Key: KeyL1ChainID, Value: b.l1.ChainID},
		output.Field{Key: KeyL1BlockTime, Value: b.l1.BlockTimeSeconds},
		output.Field{Key: KeyL1UseClique, Value: b.l1.UseClique},
	)
	for _, id := range b.order {
		obj = append(obj, output.Field{Key: id, Value: b.values[id]})
	}
	return obj
}

func (b *Bundle) MarshalJSON() ([]byte, error) {
	return b.Object().MarshalJSON()
}

func (b *Bundle) MarshalYAML() (any, error) {
	return b.Object().MarshalYAML()
}
