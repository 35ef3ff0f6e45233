// Package pagination computes page markers for limit/offset listings.
package pagination

// Page describes one page of a result set. First, Prev and Next are page
// numbers, nil when the marker does not exist (Prev on the first page, Next
// on the last one).
type Page struct {
	Total   int
	Pages   int
	Current int
	Offset  int
	First   *int
	Prev    *int
	Next    *int
}

// Compute derives the page markers for a result set of total rows at the
// given page size. A requested page beyond the last one clamps to the last
// page rather than returning an empty slice.
func Compute(total, limit, page int) Page {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}

	if total == 0 {
		return Page{Total: 0, Pages: 0, Current: 1, Offset: 0}
	}

	pages := (total + limit - 1) / limit
	current := page
	if current > pages {
		current = pages
	}

	p := Page{
		Total:   total,
		Pages:   pages,
		Current: current,
		Offset:  (current - 1) * limit,
		First:   intPtr(1),
	}
	if current > 1 {
		p.Prev = intPtr(current - 1)
	}
	if current < pages {
		p.Next = intPtr(current + 1)
	}
	return p
}

func intPtr(v int) *int { return &v }
