package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"moviecatalog/errs"
)

// LocalSource lists records kept in this service's own store. search is a
// case-insensitive substring filter on the record name; empty matches all.
type LocalSource[T any] interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, offset, limit int) ([]T, error)
}

// ExternalSource serves records from a metadata provider. Fetch returns at
// most limit records starting at offset and the total number of records the
// provider reports for the query.
type ExternalSource[T any] interface {
	Fetch(ctx context.Context, search string, offset, limit int) ([]T, int, error)
}

// Builder produces merged listings. Search is used when the request carries
// a search term, Seed otherwise.
type Builder[T any] struct {
	Local  LocalSource[T]
	Search ExternalSource[T]
	Seed   ExternalSource[T]
}

func (b *Builder[T]) Build(ctx context.Context, req Request) (Page[T], error) {
	req = req.Normalize()
	req.Search = strings.TrimSpace(req.Search)

	localTotal, err := b.Local.Count(ctx, req.Search)
	if err != nil {
		return Page[T]{}, fmt.Errorf("catalog: count local: %w", err)
	}

	w := Plan(req, localTotal)

	var local []T
	if w.LocalLimit > 0 {
		local, err = b.Local.List(ctx, req.Search, w.LocalOffset, w.LocalLimit)
		if err != nil {
			return Page[T]{}, fmt.Errorf("catalog: list local: %w", err)
		}
	}

	external := b.Seed
	if req.Search != "" {
		external = b.Search
	}
	items, externalTotal, err := external.Fetch(ctx, req.Search, w.ExternalOffset, w.ExternalLimit)
	if err != nil {
		// Provider errors surface as internal whatever their code.
		return Page[T]{}, errs.Errorf(errs.EINTERNAL, "catalog: fetch external: %v", err)
	}

	return Finish(req, w, local, localTotal, items, externalTotal), nil
}

// LookupFunc fetches a single provider record by its provider identifier.
type LookupFunc[T any] func(ctx context.Context, id string) (T, error)

// SeedSource serves a fixed list of provider identifiers. The total is the
// list length and no provider call is made unless records are requested.
type SeedSource[T any] struct {
	IDs    []string
	Lookup LookupFunc[T]
}

func (s SeedSource[T]) Fetch(ctx context.Context, _ string, offset, limit int) ([]T, int, error) {
	total := len(s.IDs)
	if limit <= 0 || offset >= total {
		return nil, total, nil
	}

	ids := s.IDs[offset:min(total, offset+limit)]
	out := make([]T, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			v, err := s.Lookup(gctx, id)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", id, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// SearchResult is one provider result page.
type SearchResult[T any] struct {
	Items []T
	Total int
}

// SearchFunc runs a provider search and returns the given 1-based result page.
type SearchFunc[T any] func(ctx context.Context, query string, page int) (SearchResult[T], error)

// SearchSource maps offset/limit windows onto a provider search that pages
// with a fixed PageSize.
type SearchSource[T any] struct {
	PageSize int
	Search   SearchFunc[T]
}

func (s SearchSource[T]) Fetch(ctx context.Context, query string, offset, limit int) ([]T, int, error) {
	size := s.PageSize
	if size <= 0 {
		return nil, 0, fmt.Errorf("catalog: invalid provider page size %d", size)
	}

	// The provider total is needed even when the page is filled locally.
	if limit <= 0 {
		res, err := s.Search(ctx, query, 1)
		if err != nil {
			return nil, 0, err
		}
		return nil, res.Total, nil
	}

	page := offset/size + 1
	res, err := s.Search(ctx, query, page)
	if err != nil {
		return nil, 0, err
	}
	total := res.Total

	// Providers answer pages past the end with an empty, total-less result.
	if len(res.Items) == 0 && page > 1 {
		first, err := s.Search(ctx, query, 1)
		if err != nil {
			return nil, 0, err
		}
		return nil, first.Total, nil
	}

	skip := offset % size
	out := make([]T, 0, limit)
	for {
		if skip < len(res.Items) {
			out = append(out, res.Items[skip:]...)
		}
		skip = 0
		if len(out) >= limit || len(res.Items) < size || page*size >= total {
			break
		}
		page++
		if res, err = s.Search(ctx, query, page); err != nil {
			return nil, 0, err
		}
		if len(res.Items) == 0 {
			break
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}
