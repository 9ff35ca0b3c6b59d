package httpserver

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/person"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required,notblank"`
}

type MovieRequest struct {
	Name          string   `json:"name" validate:"required,notblank,max=200"`
	YearOfRelease int      `json:"yearOfRelease" validate:"required,min=1888"`
	Plot          string   `json:"plot" validate:"required,min=10"`
	Poster        string   `json:"poster" validate:"required,notblank"`
	Producer      string   `json:"producer" validate:"required,objectid"`
	Actors        []string `json:"actors" validate:"omitempty,dive,objectid"`
}

func (r MovieRequest) ToInput() movie.Input {
	return movie.Input{
		Name:          r.Name,
		YearOfRelease: r.YearOfRelease,
		Plot:          r.Plot,
		Poster:        r.Poster,
		ProducerID:    r.Producer,
		ActorIDs:      r.Actors,
	}
}

// MoviePatchRequest is the body of PUT /movies/:id. Absent fields are kept.
type MoviePatchRequest struct {
	Name          *string   `json:"name" validate:"omitempty,notblank,max=200"`
	YearOfRelease *int      `json:"yearOfRelease" validate:"omitempty,min=1888"`
	Plot          *string   `json:"plot" validate:"omitempty,min=10"`
	Poster        *string   `json:"poster" validate:"omitempty,notblank"`
	Producer      *string   `json:"producer" validate:"omitempty,objectid"`
	Actors        *[]string `json:"actors" validate:"omitempty,dive,objectid"`
}

func (r MoviePatchRequest) ToPatch() movie.Patch {
	return movie.Patch{
		Name:          r.Name,
		YearOfRelease: r.YearOfRelease,
		Plot:          r.Plot,
		Poster:        r.Poster,
		ProducerID:    r.Producer,
		ActorIDs:      r.Actors,
	}
}

type PersonRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Gender      string `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,notfuture"`
	Bio         string `json:"bio" validate:"required,min=10"`
	Photo       string `json:"photo" validate:"omitempty,url"`
}

func (r PersonRequest) ToInput() person.Input {
	return person.Input{
		Name:        r.Name,
		Gender:      r.Gender,
		DateOfBirth: r.DateOfBirth,
		Bio:         r.Bio,
		Photo:       r.Photo,
	}
}

type PersonPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=200"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,notfuture"`
	Bio         *string `json:"bio" validate:"omitempty,min=10"`
	Photo       *string `json:"photo" validate:"omitempty,url"`
}

func (r PersonPatchRequest) ToPatch() person.Patch {
	return person.Patch{
		Name:        r.Name,
		Gender:      r.Gender,
		DateOfBirth: r.DateOfBirth,
		Bio:         r.Bio,
		Photo:       r.Photo,
	}
}

var errInvalidPaging = errs.Errorf(errs.EINVALID, "page and limit must be positive integers")

type listParams struct {
	Page   int
	Limit  int
	Search string
}

// parseListParams reads page, limit and the search term. searchKeys are
// tried in order; the first non-empty one wins.
func parseListParams(c echo.Context, searchKeys ...string) (listParams, error) {
	var p listParams
	var err error

	if p.Page, err = intParam(c, "page"); err != nil {
		return listParams{}, err
	}
	if p.Limit, err = intParam(c, "limit"); err != nil {
		return listParams{}, err
	}
	for _, k := range searchKeys {
		if v := strings.TrimSpace(c.QueryParam(k)); v != "" {
			p.Search = v
			break
		}
	}
	return p, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errInvalidPaging
	}
	return n, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	return c.Validate(req)
}
