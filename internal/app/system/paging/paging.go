// Package paging parses the page-number pagination every list endpoint
// uses: ?page=N&perPage=M, createdAt-descending ordering.
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPerPage is the page size applied when perPage is absent.
const DefaultPerPage = 30

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// Page holds parsed pagination values.
type Page struct {
	Number  int // 1-based page number
	PerPage int
}

// Skip returns the number of documents to skip for Mongo Find.
func (p Page) Skip() int64 { return int64(p.PerPage * (p.Number - 1)) }

// Limit returns the page size as int64 for Mongo Find.
func (p Page) Limit() int64 { return int64(p.PerPage) }

// Parse extracts page and perPage from the request query, applying the
// defaults and the cap. Invalid values fall back to the defaults.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, PerPage: DefaultPerPage}

	if s := query.Get(r, "page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Number = n
		}
	}
	if s := query.Get(r, "perPage"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.PerPage = n
			if p.PerPage > MaxPerPage {
				p.PerPage = MaxPerPage
			}
		}
	}
	return p
}
