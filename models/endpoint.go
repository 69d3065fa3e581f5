package models

import (
	"encoding/json"
	"net/http"
	"sort"
)

// Endpoint represents one documented API group (e.g. "match-v5") with its
// operations and the DTOs its detail page defines
type Endpoint struct {
	Name        string
	Description string
	Operations  []Operation
	Dtos        []Dto
}

// Operation represents a single HTTP method on an endpoint
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	ReturnType  string // Riot type expression, empty for no body
	Parameters  []Parameter
	Errors      []ResponseError
}

// ValidMethod reports whether method is an upper-case HTTP method
func ValidMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// ParameterLocation is where a parameter is sent
type ParameterLocation string

const (
	InPath   ParameterLocation = "path"
	InQuery  ParameterLocation = "query"
	InHeader ParameterLocation = "header"
)

// Parameter represents a path, query or header parameter of an operation
type Parameter struct {
	Name        string
	In          ParameterLocation
	Type        string
	Description string
	Required    bool
}

// ResponseError represents a documented error status code
type ResponseError struct {
	Code   int
	Reason string
}

// Dto represents a data transfer object owned by an endpoint.
// Parsed DTOs carry Fields; DTOs recovered from a prior build carry Raw.
type Dto struct {
	Name        string
	Description string
	Fields      []Field
	Raw         json.RawMessage
}

// Field represents one property of a parsed DTO
type Field struct {
	Name        string
	Type        string
	Description string
	Optional    bool
}

// Repaired reports whether the DTO was injected from a prior build
func (d Dto) Repaired() bool {
	return len(d.Raw) > 0
}

// FullDtoName returns the schema name used for a DTO of this endpoint
func (e *Endpoint) FullDtoName(dtoName string) string {
	return e.Name + "." + dtoName
}

// Dto returns the DTO with the given name, if defined
func (e *Endpoint) Dto(name string) (*Dto, bool) {
	for i := range e.Dtos {
		if e.Dtos[i].Name == name {
			return &e.Dtos[i], true
		}
	}
	return nil, false
}

// ListMissingDtos returns the sorted names of DTOs referenced by the endpoint
// that its page did not define. Repaired DTOs are not inspected for their own
// references.
func (e *Endpoint) ListMissingDtos() []string {
	defined := make(map[string]bool, len(e.Dtos))
	for _, dto := range e.Dtos {
		defined[dto.Name] = true
	}

	missing := make(map[string]bool)
	check := func(typ string) {
		if typ == "" {
			return
		}
		for _, name := range ParseType(typ).DtoNames() {
			if !defined[name] {
				missing[name] = true
			}
		}
	}

	for _, op := range e.Operations {
		check(op.ReturnType)
		for _, p := range op.Parameters {
			check(p.Type)
		}
	}
	for _, dto := range e.Dtos {
		if dto.Repaired() {
			continue
		}
		for _, f := range dto.Fields {
			check(f.Type)
		}
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddOldDto injects a DTO definition recovered from a prior build
func (e *Endpoint) AddOldDto(name string, raw json.RawMessage) {
	e.Dtos = append(e.Dtos, Dto{Name: name, Raw: raw})
}
