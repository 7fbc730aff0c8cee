package paging_test

import (
	"net/http/httptest"
	"testing"

	"github.com/shelterhub/shelterhub/internal/app/system/paging"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		number  int
		perPage int
	}{
		{"defaults", "/?", 1, 30},
		{"explicit", "/?page=3&perPage=10", 3, 10},
		{"capped", "/?perPage=500", 1, 100},
		{"zero page falls back", "/?page=0", 1, 30},
		{"negative perPage falls back", "/?perPage=-5", 1, 30},
		{"garbage falls back", "/?page=abc&perPage=xyz", 1, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := paging.Parse(httptest.NewRequest("GET", tc.target, nil))
			if p.Number != tc.number || p.PerPage != tc.perPage {
				t.Errorf("got page=%d perPage=%d, want page=%d perPage=%d",
					p.Number, p.PerPage, tc.number, tc.perPage)
			}
		})
	}
}

func TestSkipAndLimit(t *testing.T) {
	p := paging.Page{Number: 3, PerPage: 20}
	if p.Skip() != 40 {
		t.Errorf("skip: got %d", p.Skip())
	}
	if p.Limit() != 20 {
		t.Errorf("limit: got %d", p.Limit())
	}
}
