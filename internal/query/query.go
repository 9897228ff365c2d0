// Package query turns listing request parameters into store filters and shapes
// paginated responses.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hostelhub/hostel-backend/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps page*limit within a 32-bit int.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads page and limit parameters. Missing, malformed or non-positive
// values fall back to the defaults; page is capped at MaxPage and limit at MaxLimit.
func ParsePage(page, limit string) Page {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}

	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Number > MaxPage {
		p.Number = MaxPage
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}

// Offset is the number of records to skip. Pages outside the parsed range
// yield no offset.
func (p Page) Offset() int {
	if p.Number < 1 || p.Number > MaxPage || p.Limit < 1 || p.Limit > MaxLimit {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// PageRef points at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries links to the neighbouring pages.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Paginate builds page links for a result set of total records.
func Paginate(p Page, total int) Pagination {
	var pg Pagination
	if p.Number < MaxPage && p.Offset()+p.Limit < total {
		pg.Next = &PageRef{Page: p.Number + 1, Limit: p.Limit}
	}
	if p.Offset() > 0 {
		pg.Prev = &PageRef{Page: p.Number - 1, Limit: p.Limit}
	}
	return pg
}

// SortField is one key of a sort specification.
type SortField struct {
	Field string
	Desc  bool
}

// ByCreatedAtDesc is the default listing order.
var ByCreatedAtDesc = []SortField{{Field: "createdAt", Desc: true}}

// ParseSort parses "a,-b" into sort fields, keeping the given order. An empty
// value yields fallback. Fields outside allowed are rejected.
func ParseSort(raw string, allowed []string, fallback []SortField) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}

	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			f = SortField{Field: strings.TrimPrefix(part, "-"), Desc: true}
		} else if strings.HasPrefix(part, "+") {
			f.Field = strings.TrimPrefix(part, "+")
		}
		if !contains(allowed, f.Field) {
			return nil, apperror.Validation(fmt.Sprintf("cannot sort by %q", f.Field))
		}
		fields = append(fields, f)
	}

	if len(fields) == 0 {
		return fallback, nil
	}
	return fields, nil
}

// ParseSelect parses a comma separated sparse fieldset.
func ParseSelect(raw string, allowed []string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var fields []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !contains(allowed, part) {
			return nil, apperror.Validation(fmt.Sprintf("cannot select field %q", part))
		}
		fields = append(fields, part)
	}
	return fields, nil
}

// Project reduces item to the JSON fields listed in fields. The id field is always kept.
func Project(item any, fields []string) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var full map[string]any
	if err := json.Unmarshal(raw, &full); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fields)+1)
	if id, ok := full["id"]; ok {
		out["id"] = id
	}
	for _, f := range fields {
		if v, ok := full[f]; ok {
			out[f] = v
		}
	}
	return out, nil
}

// ParseTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperror.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD or RFC 3339", value))
	}
	return t, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
