package content

// Paginate returns the 1-based page of items with the given page size and the
// matching metadata. Pages past the end yield an empty slice; meta stays
// consistent with the full item count. page and limit must be >= 1.
func Paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	total := len(items)
	pages := (total + limit - 1) / limit

	meta := Pagination{
		Page:  page,
		Pages: pages,
		Limit: limit,
		Total: total,
	}
	if page > 1 {
		prev := page - 1
		meta.Prev = &prev
	}
	if page < pages {
		next := page + 1
		meta.Next = &next
	}

	start := (page - 1) * limit
	if start >= total {
		return []T{}, meta
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
