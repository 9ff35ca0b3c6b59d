// Package catalog merges locally stored records with records served by an
// external metadata provider into a single paginated listing.
//
// A listing is an ordered concatenation: every local match comes before every
// external entry. Paging therefore walks the local matches first and then
// continues into the provider's catalog, with the provider offset shifted by
// the number of local matches already shown on earlier pages.
package catalog

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Request is a listing request as received from a client.
type Request struct {
	Page     int
	PageSize int
	Search   string
}

// Normalize clamps page to >=1 and page size to [1, MaxPageSize], falling back
// to DefaultPageSize when the size is not set.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Start is the zero-based position of the first entry of the requested page
// within the merged sequence. It saturates at math.MaxInt.
func (r Request) Start() int {
	if r.pastEnd() {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// pastEnd reports whether the page starts beyond any representable position.
func (r Request) pastEnd() bool {
	return r.PageSize > 0 && r.Page-1 > math.MaxInt/r.PageSize
}

// Window tells which slices of the local and external sequences make up a page.
type Window struct {
	LocalOffset    int
	LocalLimit     int
	ExternalOffset int
	ExternalLimit  int
}

// Plan splits the requested page between local and external entries.
// It only depends on the request and the number of local matches.
func Plan(req Request, localTotal int) Window {
	req = req.Normalize()
	if req.pastEnd() {
		return Window{}
	}
	start := req.Start()

	var w Window
	if start < localTotal {
		w.LocalOffset = start
		w.LocalLimit = min(req.PageSize, localTotal-start)
	}
	w.ExternalLimit = req.PageSize - w.LocalLimit
	w.ExternalOffset = max(0, start-localTotal)
	return w
}

// Page is one page of a merged listing.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Pages    int
	Total    int

	// LocalCount and ExternalCount tell how many of Items came from each side.
	LocalCount    int
	ExternalCount int
}

// Finish assembles a page from the planned window and the slices returned by
// both sides. Slices longer than the window are truncated; the external slice
// is additionally capped by what the provider reports as still available.
func Finish[T any](req Request, w Window, local []T, localTotal int, external []T, externalTotal int) Page[T] {
	req = req.Normalize()

	if len(local) > w.LocalLimit {
		local = local[:w.LocalLimit]
	}
	available := max(0, externalTotal-w.ExternalOffset)
	if limit := min(w.ExternalLimit, available); len(external) > limit {
		external = external[:limit]
	}

	items := make([]T, 0, len(local)+len(external))
	items = append(items, local...)
	items = append(items, external...)

	total := localTotal + externalTotal
	return Page[T]{
		Items:         items,
		Page:          req.Page,
		PageSize:      req.PageSize,
		Pages:         PageCount(total, req.PageSize),
		Total:         total,
		LocalCount:    len(local),
		ExternalCount: len(external),
	}
}

// PageCount returns ceil(total / pageSize).
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
