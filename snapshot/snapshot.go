// Package snapshot reads the previously published specification, used to
// recover DTO definitions missing from the live documentation.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPriorBuild is returned by stores that have no published build to offer
var ErrNoPriorBuild = errors.New("no prior build")

// Snapshot is a published OpenAPI 3 document indexed by fully-qualified DTO
// name ("endpoint.Dto"). It is read-only once parsed.
type Snapshot struct {
	schemas map[string]json.RawMessage
}

type document struct {
	Components *struct {
		Schemas map[string]json.RawMessage `json:"schemas"`
	} `json:"components"`
}

// Parse indexes the components.schemas table of a published document
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prior build: %w", err)
	}
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, fmt.Errorf("failed to parse prior build: missing components.schemas")
	}
	return &Snapshot{schemas: doc.Components.Schemas}, nil
}

// Lookup returns the schema stored under fullName, verbatim
func (s *Snapshot) Lookup(fullName string) (json.RawMessage, bool) {
	raw, ok := s.schemas[fullName]
	return raw, ok
}

// Len returns the number of schemas in the snapshot
func (s *Snapshot) Len() int {
	return len(s.schemas)
}
