package listing

import "slices"

// Page is one window over a result set.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Paginate returns page (1-based) of items with limit items per page.
//
// Out of range pages yield an empty Data slice with HasPrev still reporting
// page > 1. A limit below 1 yields an empty window with TotalPages 0. Data is
// a copy and never aliases items.
func Paginate[T any](items []T, page, limit int) Page[T] {
	p := window[T](len(items), page, limit)
	if limit < 1 || page < 1 || page > p.TotalPages {
		return p
	}
	start := (page - 1) * limit
	end := min(start+limit, p.Total)
	p.Data = slices.Clone(items[start:end])
	return p
}

// PageOf wraps data that has already been cut to the window, for example by
// a database LIMIT/OFFSET, with the metadata Paginate would report for total
// items. A nil data becomes an empty slice.
func PageOf[T any](data []T, total, page, limit int) Page[T] {
	p := window[T](total, page, limit)
	if data != nil {
		p.Data = data
	}
	return p
}

func window[T any](total, page, limit int) Page[T] {
	p := Page[T]{
		Data:    []T{},
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasPrev: page > 1,
	}
	if limit < 1 {
		return p
	}
	p.TotalPages = (total + limit - 1) / limit
	p.HasNext = page < p.TotalPages
	return p
}

// Offset returns the index of the first item on page, clamped at zero.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}
