package movie

import (
	"context"
	"errors"
	"time"

	"moviecatalog/catalog"
)

type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

type Service interface {
	List(ctx context.Context, q ListQuery) (catalog.Page[Movie], error)
	Search(ctx context.Context, q ListQuery) (catalog.Page[Movie], error)
	Get(ctx context.Context, id string) (Movie, error)
	Create(ctx context.Context, in Input) (Movie, error)
	Update(ctx context.Context, id string, p Patch) (Movie, error)
	Delete(ctx context.Context, id string) error
}

// Repository is the local movie store. Count and List filter by a
// case-insensitive substring of the name and list newest first. Reads return
// movies with producer and actor names populated.
type Repository interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, offset, limit int) ([]Movie, error)
	Get(ctx context.Context, id string) (Movie, error)
	Create(ctx context.Context, m Movie) (Movie, error)
	Update(ctx context.Context, id string, m Movie) (Movie, error)
	Delete(ctx context.Context, id string) error
}

// Provider is the external movie catalog.
type Provider interface {
	SearchMovies(ctx context.Context, query string, page int) (catalog.SearchResult[Movie], error)
	GetMovie(ctx context.Context, externalID string) (Movie, error)
	PageSize() int
}

// References resolves the people a movie points at.
type References interface {
	Producer(ctx context.Context, id string) (Ref, error)
	Actors(ctx context.Context, ids []string) ([]Ref, error)
}

type Usecase struct {
	r        Repository
	p        Provider
	refs     References
	listings *catalog.Builder[Movie]
	now      func() time.Time
}

// NewUsecase builds the movie usecase. seeds are the provider ids listed when
// no search term is given.
func NewUsecase(r Repository, p Provider, refs References, seeds []string) *Usecase {
	return &Usecase{
		r:    r,
		p:    p,
		refs: refs,
		listings: &catalog.Builder[Movie]{
			Local:  r,
			Search: catalog.SearchSource[Movie]{PageSize: p.PageSize(), Search: p.SearchMovies},
			Seed:   catalog.SeedSource[Movie]{IDs: seeds, Lookup: p.GetMovie},
		},
		now: time.Now,
	}
}

func (uc *Usecase) List(ctx context.Context, q ListQuery) (catalog.Page[Movie], error) {
	if q.Page < 0 || q.Limit < 0 {
		return catalog.Page[Movie]{}, ErrInvalidPagination
	}
	return uc.listings.Build(ctx, catalog.Request{Page: q.Page, PageSize: q.Limit, Search: q.Search})
}

// Search is List fed from the search endpoint.
func (uc *Usecase) Search(ctx context.Context, q ListQuery) (catalog.Page[Movie], error) {
	return uc.List(ctx, q)
}

// Get looks the movie up locally and falls back to the provider for IMDb ids.
func (uc *Usecase) Get(ctx context.Context, id string) (Movie, error) {
	m, err := uc.r.Get(ctx, id)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrMovieNotFound) || !IsExternalID(id) {
		return Movie{}, err
	}
	return uc.p.GetMovie(ctx, id)
}

func (uc *Usecase) Create(ctx context.Context, in Input) (Movie, error) {
	m := in.Movie()
	if err := m.Validate(uc.now()); err != nil {
		return Movie{}, err
	}
	if err := uc.resolve(ctx, &m); err != nil {
		return Movie{}, err
	}
	return uc.r.Create(ctx, m)
}

func (uc *Usecase) Update(ctx context.Context, id string, p Patch) (Movie, error) {
	existing, err := uc.r.Get(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	if existing.IsExternal {
		return Movie{}, ErrExternalMovie
	}

	m := p.Apply(existing)
	if err := m.Validate(uc.now()); err != nil {
		return Movie{}, err
	}
	if p.TouchesReferences() {
		if err := uc.resolve(ctx, &m); err != nil {
			return Movie{}, err
		}
	}
	return uc.r.Update(ctx, id, m)
}

func (uc *Usecase) Delete(ctx context.Context, id string) error {
	existing, err := uc.r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsExternal {
		return ErrExternalMovie
	}
	return uc.r.Delete(ctx, id)
}

func (uc *Usecase) resolve(ctx context.Context, m *Movie) error {
	producer, err := uc.refs.Producer(ctx, m.ProducerID())
	if err != nil {
		return err
	}
	m.Producer = &producer

	if len(m.Actors) == 0 {
		return nil
	}
	actors, err := uc.refs.Actors(ctx, m.ActorIDs())
	if err != nil {
		return err
	}
	if len(actors) != len(m.Actors) {
		return ErrActorNotFound
	}
	m.Actors = actors
	return nil
}
