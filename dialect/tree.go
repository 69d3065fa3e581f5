package dialect

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tree is a dialect document ready for output. kin-openapi keeps only $ref
// on a reference, so recovered schemas are spliced in as raw JSON and the
// sibling keys of referencing properties are merged back in on marshal.
type Tree struct {
	root        any
	schemasPath []string
	refPrefix   string
	patches     *schemaPatches
}

// schemaPatches holds what the kin-openapi tree cannot carry
type schemaPatches struct {
	raw      map[string]json.RawMessage
	siblings map[string]map[string]map[string]any // schema -> property -> keys
}

func newSchemaPatches() *schemaPatches {
	return &schemaPatches{
		raw:      make(map[string]json.RawMessage),
		siblings: make(map[string]map[string]map[string]any),
	}
}

func (p *schemaPatches) addSibling(schema, property string, keys map[string]any) {
	if p.siblings[schema] == nil {
		p.siblings[schema] = make(map[string]map[string]any)
	}
	p.siblings[schema][property] = keys
}

// MarshalJSON renders the tree without HTML escaping
func (t *Tree) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(t.root)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	if len(t.patches.raw) > 0 || len(t.patches.siblings) > 0 {
		schemas := ensureObject(doc, t.schemasPath)
		for name, props := range t.patches.siblings {
			schema, ok := schemas[name].(map[string]any)
			if !ok {
				continue
			}
			properties, ok := schema["properties"].(map[string]any)
			if !ok {
				continue
			}
			for prop, keys := range props {
				target, ok := properties[prop].(map[string]any)
				if !ok {
					continue
				}
				for k, v := range keys {
					target[k] = v
				}
			}
		}
		for name, raw := range t.patches.raw {
			schemas[name] = json.RawMessage(bytes.ReplaceAll(raw, []byte(schemaRefPrefix), []byte(t.refPrefix)))
		}
	}

	return marshalUnescaped(doc)
}

func ensureObject(doc map[string]any, path []string) map[string]any {
	cur := doc
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}
	return cur
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
