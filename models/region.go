package models

// Region represents one row of the regional endpoints table
type Region struct {
	Code   string
	Values map[string]string // column name -> cell value, e.g. "host"
}

// Host returns the region's host column, if present
func (r Region) Host() string {
	return r.Values["host"]
}
