package listutil

import (
	"net/url"
	"testing"
)

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery(url.Values{})
	if q.Page != 1 || q.PerPage != DefaultPerPage || q.Search != "" {
		t.Errorf("ParseQuery(empty) = %+v", q)
	}
	if q.Offset() != 0 {
		t.Errorf("Offset() = %d, want 0", q.Offset())
	}
}

func TestParseQuery_Bounds(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
	}{
		{"valid", "3", "10", 3, 10},
		{"negativePage", "-2", "10", 1, 10},
		{"zeroPerPage", "1", "0", 1, DefaultPerPage},
		{"garbage", "x", "y", 1, DefaultPerPage},
		{"capped", "1", "10000", 1, MaxPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(url.Values{"page": {tt.page}, "per_page": {tt.perPage}})
			if q.Page != tt.wantPage || q.PerPage != tt.wantPerPage {
				t.Errorf("got page=%d per_page=%d, want %d/%d", q.Page, q.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestParseQuery_Filters(t *testing.T) {
	q := ParseQuery(url.Values{
		"q":        {"  dana "},
		"category": {"auth"},
		"action":   {""},
		"unknown":  {"x"},
	}, "category", "action")

	if q.Search != "dana" {
		t.Errorf("Search = %q, want trimmed", q.Search)
	}
	if got := q.Filter("category"); got == nil || *got != "auth" {
		t.Errorf("Filter(category) = %v, want auth", got)
	}
	if q.Filter("action") != nil {
		t.Error("empty filter value should be absent")
	}
	if _, ok := q.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown'")
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		perPage   int
		total     int
		wantPages int
		wantPage  int
	}{
		{"basic", 1, 20, 85, 5, 1},
		{"lastPage", 5, 20, 85, 5, 5},
		{"pageBeyondTotal", 10, 20, 85, 5, 5},
		{"emptyList", 1, 20, 0, 1, 1},
		{"exactFit", 1, 10, 10, 1, 1},
		{"zeroPerPage", 1, 0, 10, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
		})
	}
}
