// Package deployconfig maps between bundles and the OP-stack deploy-config
// document, whose keys are camelCase.
package deployconfig

import (
	"fmt"

	"github.com/compose-network/rollup-configurator/internal/bundle"
	"github.com/compose-network/rollup-configurator/internal/catalog"
	"github.com/compose-network/rollup-configurator/internal/output"
)

const (
	KeyL1ChainID   = "l1ChainID"
	KeyL1BlockTime = "l1BlockTime"
	KeyL1UseClique = "l1UseClique"
)

// Document is an ordered deploy-config.
type Document struct {
	fields output.Object
}

var l1Keys = map[string]string{
	KeyL1ChainID:   bundle.KeyL1ChainID,
	KeyL1BlockTime: bundle.KeyL1BlockTime,
	KeyL1UseClique: bundle.KeyL1UseClique,
}

// Render converts a bundle into a deploy-config. Every catalog field must carry a
// deploy key.
func Render(b *bundle.Bundle, c *catalog.Catalog) (*Document, error) {
	doc := &Document{fields: output.Object{
		{Key: KeyL1ChainID, Value: b.L1ChainID()},
		{Key: KeyL1BlockTime, Value: b.L1BlockTime()},
		{Key: KeyL1UseClique, Value: b.L1UseClique()},
	}}

	for _, id := range b.FieldIDs() {
		p, ok := c.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("bundle field %q is not in the catalog", id)
		}
		if p.DeployKey == "" {
			return nil, fmt.Errorf("parameter %q has no deploy key", id)
		}
		v, _ := b.Get(id)
		doc.fields = append(doc.fields, output.Field{Key: p.DeployKey, Value: v.Interface()})
	}

	return doc, nil
}

func (d *Document) Keys() []string {
	return d.fields.Keys()
}

func (d *Document) Get(key string) (any, bool) {
	return d.fields.Get(key)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return d.fields.MarshalJSON()
}

// Normalize rewrites deploy-config keys to catalog ids. The three L1 keys map to
// their bundle names and unknown keys are kept as they are. When a record holds
// both a deploy key and its catalog id, the catalog id wins.
func Normalize(c *catalog.Catalog, raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		id, ok := canonical(c, key)
		if !ok {
			out[key] = value
			continue
		}
		if _, exact := raw[id]; exact {
			continue
		}
		out[id] = value
	}
	return out
}

func canonical(c *catalog.Catalog, key string) (string, bool) {
	if id, ok := l1Keys[key]; ok {
		return id, true
	}
	return c.ByDeployKey(key)
}
