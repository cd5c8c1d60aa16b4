package render

import (
	"sort"
	"strconv"
	"strings"

	"docraster/internal/pkg/errors"
)

// PageSelection is a deduplicated set of zero-indexed page numbers,
// parsed from a 1-indexed user expression like "1,3-5, 8". Bounds
// checking against the document's page count happens later, once the
// document has been loaded.
type PageSelection struct {
	indexes []int
}

// ParsePageSelection parses a comma-separated expression of single
// pages and inclusive ranges. Whitespace around tokens is ignored and
// empty tokens are skipped; anything else malformed fails the request.
func ParsePageSelection(expr string) (*PageSelection, error) {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		first, last, err := parsePageToken(token)
		if err != nil {
			return nil, err
		}
		for p := first; p <= last; p++ {
			// store zero-indexed
			seen[p-1] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, errors.Validation("invalid page range: no valid pages specified")
	}

	indexes := make([]int, 0, len(seen))
	for p := range seen {
		indexes = append(indexes, p)
	}
	sort.Ints(indexes)

	return &PageSelection{indexes: indexes}, nil
}

// parsePageToken parses one "N" or "A-B" token into a 1-indexed
// inclusive range.
func parsePageToken(token string) (int, int, error) {
	if first, rest, ok := strings.Cut(token, "-"); ok {
		a, errA := strconv.Atoi(strings.TrimSpace(first))
		b, errB := strconv.Atoi(strings.TrimSpace(rest))
		if errA != nil || errB != nil {
			return 0, 0, errors.Validationf("invalid page range token %q", token).WithField("token", token)
		}
		if a < 1 || b < 1 || a > b {
			return 0, 0, errors.Validationf("invalid page range token %q: pages are 1-indexed and ranges ascending", token).WithField("token", token)
		}
		return a, b, nil
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, 0, errors.Validationf("invalid page token %q", token).WithField("token", token)
	}
	if n < 1 {
		return 0, 0, errors.Validationf("invalid page token %q: pages are 1-indexed", token).WithField("token", token)
	}
	return n, n, nil
}

// Indexes returns the selected zero-indexed pages in ascending order.
func (s *PageSelection) Indexes() []int {
	return s.indexes
}

// Validate checks every selected index against the document page count.
func (s *PageSelection) Validate(totalPages int) error {
	// indexes are sorted, the last one is the largest
	if max := s.indexes[len(s.indexes)-1]; max >= totalPages {
		return errors.Validationf("invalid page range: page %d out of bounds for %d-page document", max+1, totalPages)
	}
	return nil
}
