package models

import "strings"

// TypeKind classifies a Riot type expression
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindList
	KindSet
	KindMap
	KindDto
)

// TypeRef is a parsed Riot type expression such as "long",
// "List[MatchDto]" or "Map[String, ChampionDto]"
type TypeRef struct {
	Kind TypeKind
	Name string   // primitive name (lower-cased) or DTO name
	Key  *TypeRef // map key
	Elem *TypeRef // list/set element or map value
	Raw  string
}

var primitives = map[string]bool{
	"string":  true,
	"int":     true,
	"integer": true,
	"long":    true,
	"float":   true,
	"double":  true,
	"boolean": true,
	"object":  true,
}

// ParseType parses a Riot type expression. Unknown identifiers are treated as DTO names.
func ParseType(s string) TypeRef {
	raw := strings.TrimSpace(s)
	if open := strings.Index(raw, "["); open > 0 && strings.HasSuffix(raw, "]") {
		outer := strings.ToLower(strings.TrimSpace(raw[:open]))
		inner := raw[open+1 : len(raw)-1]
		switch outer {
		case "list":
			elem := ParseType(inner)
			return TypeRef{Kind: KindList, Elem: &elem, Raw: raw}
		case "set":
			elem := ParseType(inner)
			return TypeRef{Kind: KindSet, Elem: &elem, Raw: raw}
		case "map":
			k, v := splitMapArgs(inner)
			key := ParseType(k)
			val := ParseType(v)
			return TypeRef{Kind: KindMap, Key: &key, Elem: &val, Raw: raw}
		}
	}
	if primitives[strings.ToLower(raw)] {
		return TypeRef{Kind: KindPrimitive, Name: strings.ToLower(raw), Raw: raw}
	}
	return TypeRef{Kind: KindDto, Name: raw, Raw: raw}
}

// splitMapArgs splits "K, V" at the top-level comma
func splitMapArgs(s string) (string, string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return "string", s
}

// DtoNames returns every DTO name referenced by the type, in order of appearance
func (t TypeRef) DtoNames() []string {
	switch t.Kind {
	case KindDto:
		if t.Name == "" {
			return nil
		}
		return []string{t.Name}
	case KindList, KindSet:
		return t.Elem.DtoNames()
	case KindMap:
		return append(t.Key.DtoNames(), t.Elem.DtoNames()...)
	default:
		return nil
	}
}
