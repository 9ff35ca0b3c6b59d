package person

import (
	"context"
	"errors"
	"strconv"
	"time"

	"moviecatalog/catalog"
)

type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

type Service interface {
	List(ctx context.Context, q ListQuery) (catalog.Page[Person], error)
	Get(ctx context.Context, id string) (Person, error)
	Create(ctx context.Context, in Input) (Person, error)
	Update(ctx context.Context, id string, p Patch) (Person, error)
	Delete(ctx context.Context, id string) error
}

// Repository stores the people of one role. Count and List filter by a
// case-insensitive substring of the name and list by name.
type Repository interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, offset, limit int) ([]Person, error)
	Get(ctx context.Context, id string) (Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	Update(ctx context.Context, id string, p Person) (Person, error)
	Delete(ctx context.Context, id string) error
}

// Provider is the external people catalog.
type Provider interface {
	SearchPeople(ctx context.Context, query string, page int) (catalog.SearchResult[Person], error)
	GetPerson(ctx context.Context, externalID string) (Person, error)
	PageSize() int
}

type Usecase struct {
	role     Role
	r        Repository
	p        Provider
	listings *catalog.Builder[Person]
	now      func() time.Time
}

func NewUsecase(role Role, r Repository, p Provider, seeds []string) *Usecase {
	return &Usecase{
		role: role,
		r:    r,
		p:    p,
		listings: &catalog.Builder[Person]{
			Local:  r,
			Search: catalog.SearchSource[Person]{PageSize: p.PageSize(), Search: p.SearchPeople},
			Seed:   catalog.SeedSource[Person]{IDs: seeds, Lookup: p.GetPerson},
		},
		now: time.Now,
	}
}

func (uc *Usecase) Role() Role {
	return uc.role
}

func (uc *Usecase) List(ctx context.Context, q ListQuery) (catalog.Page[Person], error) {
	if q.Page < 0 || q.Limit < 0 {
		return catalog.Page[Person]{}, ErrInvalidPagination
	}
	return uc.listings.Build(ctx, catalog.Request{Page: q.Page, PageSize: q.Limit, Search: q.Search})
}

// Get looks the person up locally and falls back to the provider for
// numeric provider ids.
func (uc *Usecase) Get(ctx context.Context, id string) (Person, error) {
	p, err := uc.r.Get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, uc.role.NotFound()) || !isExternalID(id) {
		return Person{}, err
	}
	return uc.p.GetPerson(ctx, id)
}

func (uc *Usecase) Create(ctx context.Context, in Input) (Person, error) {
	p, err := in.Person()
	if err != nil {
		return Person{}, err
	}
	if err := p.Validate(uc.now()); err != nil {
		return Person{}, err
	}
	return uc.r.Create(ctx, p)
}

func (uc *Usecase) Update(ctx context.Context, id string, pt Patch) (Person, error) {
	existing, err := uc.r.Get(ctx, id)
	if err != nil {
		return Person{}, err
	}
	if existing.External() {
		return Person{}, uc.role.Immutable()
	}

	p, err := pt.Apply(existing)
	if err != nil {
		return Person{}, err
	}
	if err := p.Validate(uc.now()); err != nil {
		return Person{}, err
	}
	return uc.r.Update(ctx, id, p)
}

func (uc *Usecase) Delete(ctx context.Context, id string) error {
	existing, err := uc.r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.External() {
		return uc.role.Immutable()
	}
	return uc.r.Delete(ctx, id)
}

func isExternalID(id string) bool {
	n, err := strconv.ParseUint(id, 10, 64)
	return err == nil && n > 0
}
