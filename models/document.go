package models

// SpecDocument is the dialect-agnostic input handed to every spec dialect
type SpecDocument struct {
	Title       string
	Version     string
	Description string
	Endpoints   []*Endpoint
	Regions     []Region
}
