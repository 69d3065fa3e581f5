// Package dialect converts a SpecDocument into the trees of the published
// API-description formats.
package dialect

import "riotapi-schema/models"

// Dialect is one API-description format. ToSpec returns a tree that
// encoding/json can marshal.
type Dialect interface {
	Name() string
	ToSpec(doc *models.SpecDocument) (any, error)
}

// All returns every published dialect in output order
func All() []Dialect {
	return []Dialect{NewOpenAPI3(), NewSwagger2()}
}
