package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseError reports a page whose structure lacks a required element or field
type ParseError struct {
	Page    string // page being parsed, e.g. "index" or "api-details/match-v5"
	Element string // what was missing or malformed
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s: %s: %v", e.Page, e.Element, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: missing %s", e.Page, e.Element)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseDocument parses an HTML string into a navigable document
func ParseDocument(page, htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &ParseError{Page: page, Element: "html document", Err: err}
	}
	return doc, nil
}

// detailEnvelope is the JSON body served by the api-details resource
type detailEnvelope struct {
	HTML *string `json:"html"`
}

// ParseDetailEnvelope extracts the embedded HTML from an api-details response
func ParseDetailEnvelope(page string, body []byte) (string, error) {
	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &ParseError{Page: page, Element: "json envelope", Err: err}
	}
	if env.HTML == nil {
		return "", &ParseError{Page: page, Element: "html field"}
	}
	return *env.HTML, nil
}

// cleanText collapses whitespace runs into single spaces
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textWithoutHeading returns the text of a block excluding its heading element
func textWithoutHeading(block *goquery.Selection, heading string) string {
	c := block.Clone()
	c.Find(heading).Remove()
	return cleanText(c.Text())
}

// table is a parsed HTML table keyed by lower-cased header text
type table struct {
	headers []string
	rows    []*goquery.Selection
}

func parseTable(t *goquery.Selection) table {
	var tbl table
	t.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		tbl.headers = append(tbl.headers, strings.ToLower(cleanText(th.Text())))
	})
	t.Find("tbody").First().Children().Each(func(_ int, tr *goquery.Selection) {
		if goquery.NodeName(tr) == "tr" {
			tbl.rows = append(tbl.rows, tr)
		}
	})
	return tbl
}

// column returns the index of the first header matching one of names, or fallback
func (t table) column(fallback int, names ...string) int {
	for i, h := range t.headers {
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return fallback
}

// cell returns the i-th cell of row, or an empty selection
func cell(row *goquery.Selection, i int) *goquery.Selection {
	if i < 0 {
		return row.Find("td").Slice(0, 0)
	}
	return row.Find("td").Eq(i)
}
