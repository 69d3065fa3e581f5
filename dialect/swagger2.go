package dialect

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi2conv"

	"riotapi-schema/models"
)

const (
	Swagger2Name = "swaggerspec-2.0"

	definitionRefPrefix = "#/definitions/"
)

// Swagger2 implements the Dialect interface for Swagger 2.0 by converting
// the OpenAPI 3 tree, so both dialects carry the same content
type Swagger2 struct {
	v3 *OpenAPI3
}

// NewSwagger2 creates a new Swagger 2.0 dialect
func NewSwagger2() *Swagger2 {
	return &Swagger2{v3: NewOpenAPI3()}
}

func (d *Swagger2) Name() string {
	return Swagger2Name
}

func (d *Swagger2) ToSpec(doc *models.SpecDocument) (any, error) {
	v3, patches, err := d.v3.build(doc)
	if err != nil {
		return nil, err
	}
	v2, err := openapi2conv.FromV3(v3)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to %s: %w", Swagger2Name, err)
	}
	return &Tree{
		root:        v2,
		schemasPath: []string{"definitions"},
		refPrefix:   definitionRefPrefix,
		patches:     patches,
	}, nil
}
