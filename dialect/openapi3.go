package dialect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"riotapi-schema/models"
)

const (
	OpenAPI3Name = "openapi-3.0.0"

	securitySchemeName = "APIKey"
	apiKeyHeader       = "X-Riot-Token"
	schemaRefPrefix    = "#/components/schemas/"
	typeExtension      = "x-type"
)

// OpenAPI3 implements the Dialect interface for OpenAPI 3.0.0
type OpenAPI3 struct{}

// NewOpenAPI3 creates a new OpenAPI 3.0.0 dialect
func NewOpenAPI3() *OpenAPI3 {
	return &OpenAPI3{}
}

func (d *OpenAPI3) Name() string {
	return OpenAPI3Name
}

func (d *OpenAPI3) ToSpec(doc *models.SpecDocument) (any, error) {
	spec, patches, err := d.build(doc)
	if err != nil {
		return nil, err
	}
	return &Tree{
		root:        spec,
		schemasPath: []string{"components", "schemas"},
		refPrefix:   schemaRefPrefix,
		patches:     patches,
	}, nil
}

// build assembles the OpenAPI 3 document. Schemas are keyed by the
// fully-qualified DTO name; DTOs recovered from a prior build stay raw in
// the returned patches so they are written out unchanged.
func (d *OpenAPI3) build(doc *models.SpecDocument) (*openapi3.T, *schemaPatches, error) {
	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas)
	components.SecuritySchemes = openapi3.SecuritySchemes{
		securitySchemeName: &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{Type: "apiKey", In: "header", Name: apiKeyHeader},
		},
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       doc.Title,
			Version:     doc.Version,
			Description: doc.Description,
		},
		Components: &components,
		Paths:      openapi3.NewPaths(),
		Security:   openapi3.SecurityRequirements{{securitySchemeName: []string{}}},
	}
	patches := newSchemaPatches()

	for _, region := range doc.Regions {
		host := region.Host()
		if host == "" {
			continue
		}
		spec.Servers = append(spec.Servers, &openapi3.Server{
			URL:         "https://" + host,
			Description: region.Code,
		})
	}

	for _, endpoint := range doc.Endpoints {
		spec.Tags = append(spec.Tags, &openapi3.Tag{Name: endpoint.Name, Description: endpoint.Description})

		for _, op := range endpoint.Operations {
			item := spec.Paths.Value(op.Path)
			if item == nil {
				item = &openapi3.PathItem{}
				spec.Paths.Set(op.Path, item)
			}
			if !models.ValidMethod(op.Method) {
				return nil, nil, fmt.Errorf("unsupported HTTP method %q for %s", op.Method, endpoint.Name+"."+op.ID)
			}
			item.SetOperation(op.Method, buildOperation(endpoint, op))
		}

		for _, dto := range endpoint.Dtos {
			full := endpoint.FullDtoName(dto.Name)
			if dto.Repaired() {
				if !json.Valid(dto.Raw) {
					return nil, nil, fmt.Errorf("failed to decode recovered schema %s: invalid JSON", full)
				}
				patches.raw[full] = dto.Raw
				continue
			}
			components.Schemas[full] = buildDtoSchema(endpoint, dto, patches)
		}
	}

	return spec, patches, nil
}

func buildOperation(endpoint *models.Endpoint, op models.Operation) *openapi3.Operation {
	success := openapi3.NewResponse().WithDescription("Success")
	if op.ReturnType != "" {
		success = success.WithJSONSchemaRef(typeSchema(endpoint, models.ParseType(op.ReturnType)))
	}

	result := &openapi3.Operation{
		Tags:        []string{endpoint.Name},
		OperationID: endpoint.Name + "." + op.ID,
		Summary:     op.Summary,
		Description: op.Description,
		Responses:   openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: success})),
	}

	for _, p := range op.Parameters {
		result.Parameters = append(result.Parameters, &openapi3.ParameterRef{Value: buildParameter(endpoint, p)})
	}

	for _, e := range op.Errors {
		reason := e.Reason
		if reason == "" {
			reason = http.StatusText(e.Code)
		}
		result.Responses.Set(strconv.Itoa(e.Code), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(reason),
		})
	}

	return result
}

func buildParameter(endpoint *models.Endpoint, p models.Parameter) *openapi3.Parameter {
	var param *openapi3.Parameter
	switch p.In {
	case models.InPath:
		param = openapi3.NewPathParameter(p.Name)
	case models.InHeader:
		param = openapi3.NewHeaderParameter(p.Name)
	default:
		param = openapi3.NewQueryParameter(p.Name)
	}
	param = param.WithDescription(p.Description).WithRequired(p.Required || p.In == models.InPath)
	param.Schema = typeSchema(endpoint, models.ParseType(p.Type))
	return param
}

func buildDtoSchema(endpoint *models.Endpoint, dto models.Dto, patches *schemaPatches) *openapi3.SchemaRef {
	full := endpoint.FullDtoName(dto.Name)
	schema := openapi3.NewObjectSchema()
	schema.Title = dto.Name
	schema.Description = dto.Description
	schema.Properties = make(openapi3.Schemas, len(dto.Fields))
	for _, f := range dto.Fields {
		t := models.ParseType(f.Type)
		prop := typeSchema(endpoint, t)
		if prop.Value == nil {
			keys := map[string]any{typeExtension: strings.TrimSpace(t.Raw)}
			if f.Description != "" {
				keys["description"] = f.Description
			}
			patches.addSibling(full, f.Name, keys)
		} else if f.Description != "" {
			prop.Value.Description = f.Description
		}
		schema.Properties[f.Name] = prop
		if !f.Optional {
			schema.Required = append(schema.Required, f.Name)
		}
	}
	return openapi3.NewSchemaRef("", schema)
}

// typeSchema maps a Riot type expression onto a schema. DTO names become
// references into components.schemas; inline schemas keep the original
// expression under x-type.
func typeSchema(endpoint *models.Endpoint, t models.TypeRef) *openapi3.SchemaRef {
	var schema *openapi3.Schema
	switch t.Kind {
	case models.KindDto:
		return openapi3.NewSchemaRef(schemaRefPrefix+endpoint.FullDtoName(t.Name), nil)
	case models.KindList, models.KindSet:
		schema = openapi3.NewArraySchema()
		schema.Items = typeSchema(endpoint, *t.Elem)
		schema.UniqueItems = t.Kind == models.KindSet
	case models.KindMap:
		schema = openapi3.NewObjectSchema()
		schema.AdditionalProperties = openapi3.AdditionalProperties{Schema: typeSchema(endpoint, *t.Elem)}
	default:
		schema = primitiveSchema(t.Name)
	}

	schema.Extensions = map[string]any{typeExtension: strings.TrimSpace(t.Raw)}
	return openapi3.NewSchemaRef("", schema)
}

func primitiveSchema(name string) *openapi3.Schema {
	switch name {
	case "string":
		return openapi3.NewStringSchema()
	case "int", "integer":
		return openapi3.NewInt32Schema()
	case "long":
		return openapi3.NewInt64Schema()
	case "float":
		return openapi3.NewFloat64Schema().WithFormat("float")
	case "double":
		return openapi3.NewFloat64Schema().WithFormat("double")
	case "boolean":
		return openapi3.NewBoolSchema()
	default:
		return openapi3.NewObjectSchema()
	}
}
