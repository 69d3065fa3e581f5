package parser

import (
	"riotapi-schema/models"

	"github.com/PuerkitoBio/goquery"
)

// EndpointMarker is one endpoint entry of the API methods index
type EndpointMarker struct {
	Name        string
	Description string
}

// IndexParser extracts endpoint markers from the API methods index page
type IndexParser struct{}

// NewIndexParser creates a new IndexParser instance
func NewIndexParser() *IndexParser {
	return &IndexParser{}
}

// ParseIndex returns every endpoint marker in page order. Names must be unique.
func (p *IndexParser) ParseIndex(htmlContent string) ([]EndpointMarker, error) {
	const page = "api-methods"
	doc, err := ParseDocument(page, htmlContent)
	if err != nil {
		return nil, err
	}

	var markers []EndpointMarker
	var parseErr error
	seen := make(map[string]bool)
	doc.Find(".api_option").EachWithBreak(func(i int, s *goquery.Selection) bool {
		name, ok := s.Attr("api-name")
		if !ok || name == "" {
			parseErr = &ParseError{Page: page, Element: "api-name attribute"}
			return false
		}
		if seen[name] {
			parseErr = &ParseError{Page: page, Element: "unique endpoint name " + name}
			return false
		}
		desc := s.Find(".api_desc").First()
		if desc.Length() == 0 {
			parseErr = &ParseError{Page: page, Element: ".api_desc of " + name}
			return false
		}
		seen[name] = true
		markers = append(markers, EndpointMarker{Name: name, Description: cleanText(desc.Text())})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(markers) == 0 {
		return nil, &ParseError{Page: page, Element: ".api_option elements"}
	}
	return markers, nil
}

// Endpoint returns a bare endpoint for the marker
func (m EndpointMarker) Endpoint() *models.Endpoint {
	return &models.Endpoint{Name: m.Name, Description: m.Description}
}
