package parser

import (
	"fmt"

	"riotapi-schema/models"
)

// RegionParser extracts the regional endpoints table
type RegionParser struct{}

// NewRegionParser creates a new RegionParser instance
func NewRegionParser() *RegionParser {
	return &RegionParser{}
}

// ParseRegions maps each body row of the first table in the first content
// panel to a Region. The first cell is the region code; the remaining cells
// are keyed by their lower-cased column header.
func (p *RegionParser) ParseRegions(htmlContent string) ([]models.Region, error) {
	const page = "regional-endpoints"
	doc, err := ParseDocument(page, htmlContent)
	if err != nil {
		return nil, err
	}

	panel := doc.Find(".panel-content").First()
	if panel.Length() == 0 {
		return nil, &ParseError{Page: page, Element: ".panel-content"}
	}
	tableSel := panel.Find("table").First()
	if tableSel.Length() == 0 {
		return nil, &ParseError{Page: page, Element: "table in .panel-content"}
	}
	if tableSel.Find("tbody").Length() == 0 {
		return nil, &ParseError{Page: page, Element: "tbody"}
	}

	tbl := parseTable(tableSel)
	regions := make([]models.Region, 0, len(tbl.rows))
	for _, row := range tbl.rows {
		cells := row.Find("td")
		if cells.Length() == 0 {
			continue
		}
		region := models.Region{
			Code:   cleanText(cells.First().Text()),
			Values: make(map[string]string),
		}
		for i := 1; i < cells.Length(); i++ {
			key := fmt.Sprintf("column%d", i)
			if i < len(tbl.headers) && tbl.headers[i] != "" {
				key = tbl.headers[i]
			}
			region.Values[key] = cleanText(cells.Eq(i).Text())
		}
		regions = append(regions, region)
	}
	return regions, nil
}
