package parser

import (
	"strconv"
	"strings"

	"riotapi-schema/models"

	"github.com/PuerkitoBio/goquery"
)

// EndpointParser extracts operations and DTOs from an endpoint detail page
type EndpointParser struct{}

// NewEndpointParser creates a new EndpointParser instance
func NewEndpointParser() *EndpointParser {
	return &EndpointParser{}
}

// ParseEndpoint parses the HTML embedded in an api-details response into an Endpoint
func (p *EndpointParser) ParseEndpoint(marker EndpointMarker, htmlContent string) (*models.Endpoint, error) {
	page := "api-details/" + marker.Name
	doc, err := ParseDocument(page, htmlContent)
	if err != nil {
		return nil, err
	}

	endpoint := marker.Endpoint()
	operations := doc.Find("li.operation")
	if operations.Length() == 0 {
		return nil, &ParseError{Page: page, Element: "li.operation elements"}
	}

	var parseErr error
	operations.EachWithBreak(func(i int, s *goquery.Selection) bool {
		op, err := p.extractOperation(page, s)
		if err != nil {
			parseErr = err
			return false
		}
		endpoint.Operations = append(endpoint.Operations, *op)

		for _, dto := range p.extractDtos(s) {
			// The same DTO is repeated under every operation using it
			if _, ok := endpoint.Dto(dto.Name); !ok {
				endpoint.Dtos = append(endpoint.Dtos, dto)
			}
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return endpoint, nil
}

// extractOperation extracts method, path, notes, parameters and errors of one operation
func (p *EndpointParser) extractOperation(page string, s *goquery.Selection) (*models.Operation, error) {
	op := &models.Operation{}

	op.Method = strings.ToUpper(cleanText(s.Find(".http_method").First().Text()))
	if !models.ValidMethod(op.Method) {
		return nil, &ParseError{Page: page, Element: ".http_method"}
	}
	op.Path = cleanText(s.Find(".path").First().Text())
	if op.Path == "" {
		return nil, &ParseError{Page: page, Element: ".path of " + op.Method + " operation"}
	}

	// Operation ids look like "Match-v5_getMatch"
	if id, ok := s.Attr("id"); ok && id != "" {
		op.ID = id[strings.LastIndex(id, "_")+1:]
	} else {
		op.ID = strings.ToLower(op.Method) + op.Path
	}
	op.Summary = cleanText(s.Find(".heading .options").First().Text())

	s.Find(".api_block").Each(func(_ int, block *goquery.Selection) {
		title := strings.ToLower(cleanText(block.Find("h4").First().Text()))
		switch title {
		case "implementation notes":
			op.Description = textWithoutHeading(block, "h4")
		case "return value":
			op.ReturnType = textWithoutHeading(block, "h4")
		case "path parameters":
			op.Parameters = append(op.Parameters, p.extractParameters(block, models.InPath)...)
		case "query parameters":
			op.Parameters = append(op.Parameters, p.extractParameters(block, models.InQuery)...)
		case "header parameters":
			op.Parameters = append(op.Parameters, p.extractParameters(block, models.InHeader)...)
		case "response errors":
			op.Errors = append(op.Errors, p.extractErrors(block)...)
		}
	})

	return op, nil
}

// extractParameters reads a parameter table. A trailing "*" or a .required marker means required.
func (p *EndpointParser) extractParameters(block *goquery.Selection, in models.ParameterLocation) []models.Parameter {
	tbl := parseTable(block.Find("table").First())
	nameCol := tbl.column(0, "name", "parameter")
	typeCol := tbl.column(1, "data type", "type", "value")
	descCol := tbl.column(2, "description")

	var params []models.Parameter
	for _, row := range tbl.rows {
		nameCell := cell(row, nameCol)
		name := cleanText(nameCell.Text())
		required := in == models.InPath || strings.HasSuffix(name, "*") || nameCell.Find(".required").Length() > 0
		name = strings.TrimSpace(strings.TrimSuffix(name, "*"))
		if name == "" {
			continue
		}
		params = append(params, models.Parameter{
			Name:        name,
			In:          in,
			Type:        cleanText(cell(row, typeCol).Text()),
			Description: cleanText(cell(row, descCol).Text()),
			Required:    required,
		})
	}
	return params
}

// extractErrors reads the response error table
func (p *EndpointParser) extractErrors(block *goquery.Selection) []models.ResponseError {
	tbl := parseTable(block.Find("table").First())
	codeCol := tbl.column(0, "http status code", "status code", "code")
	reasonCol := tbl.column(1, "reason", "description")

	var errs []models.ResponseError
	for _, row := range tbl.rows {
		code, err := strconv.Atoi(cleanText(cell(row, codeCol).Text()))
		if err != nil {
			continue
		}
		errs = append(errs, models.ResponseError{Code: code, Reason: cleanText(cell(row, reasonCol).Text())})
	}
	return errs
}

// extractDtos reads the Response Classes block: an h5 "Name - description"
// heading followed by the DTO's field table
func (p *EndpointParser) extractDtos(s *goquery.Selection) []models.Dto {
	var dtos []models.Dto
	s.Find(".api_block").Each(func(_ int, block *goquery.Selection) {
		if strings.ToLower(cleanText(block.Find("h4").First().Text())) != "response classes" {
			return
		}
		block.Find("h5").Each(func(_ int, h *goquery.Selection) {
			heading := cleanText(h.Text())
			name, desc, _ := strings.Cut(heading, " - ")
			name = strings.TrimSpace(name)
			if name == "" {
				return
			}
			dto := models.Dto{Name: name, Description: strings.TrimSpace(desc)}

			tbl := parseTable(h.NextUntil("h5").Filter("table").First())
			nameCol := tbl.column(0, "name")
			typeCol := tbl.column(1, "data type", "type")
			descCol := tbl.column(2, "description")
			for _, row := range tbl.rows {
				nameCell := cell(row, nameCol)
				fieldName := cleanText(nameCell.Text())
				if fieldName == "" {
					continue
				}
				dto.Fields = append(dto.Fields, models.Field{
					Name:        fieldName,
					Type:        cleanText(cell(row, typeCol).Text()),
					Description: cleanText(cell(row, descCol).Text()),
					Optional:    nameCell.Find(".optional").Length() > 0,
				})
			}
			dtos = append(dtos, dto)
		})
	})
	return dtos
}
