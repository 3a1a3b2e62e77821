// Package paginate windows an already-ordered slice into fixed-size pages.
package paginate

import "strconv"

// Page is one window over a listing plus the navigation state the
// templates need.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns the 1-indexed page of items. Out-of-range pages clamp
// to the nearest valid page instead of erroring; an empty listing is a
// single empty page.
func Paginate[T any](items []T, page, size int) Page[T] {
	totalPages := (len(items) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: totalPages,
	}
}

// ParsePage reads a page number out of a query-string value. Anything
// that is not a positive integer means the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
