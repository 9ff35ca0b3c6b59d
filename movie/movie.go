package movie

import (
	"strings"
	"time"

	"moviecatalog/errs"
)

const (
	FirstFilmYear  = 1888
	MinPlotLength  = 10
	ExternalPrefix = "tt"
)

var (
	ErrMovieNotFound     = errs.Errorf(errs.ENOTFOUND, "Movie not found")
	ErrExternalMovie     = errs.Errorf(errs.EFORBIDDEN, "External movies cannot be modified")
	ErrNameRequired      = errs.Errorf(errs.EINVALID, "Movie name is required")
	ErrInvalidYear       = errs.Errorf(errs.EINVALID, "Year of release must be between 1888 and the current year")
	ErrInvalidPlot       = errs.Errorf(errs.EINVALID, "Plot must be at least 10 characters long")
	ErrPosterRequired    = errs.Errorf(errs.EINVALID, "Poster URL is required")
	ErrProducerRequired  = errs.Errorf(errs.EINVALID, "Producer is required")
	ErrProducerNotFound  = errs.Errorf(errs.EINVALID, "Producer not found")
	ErrActorNotFound     = errs.Errorf(errs.EINVALID, "Actor not found")
	ErrInvalidPagination = errs.Errorf(errs.EINVALID, "page and limit must be positive integers")
)

// Ref points at an actor or producer. Name is filled in on reads.
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Movie struct {
	ID            string    `json:"id,omitempty"`
	Name          string    `json:"name"`
	YearOfRelease int       `json:"yearOfRelease"`
	Plot          string    `json:"plot,omitempty"`
	Poster        string    `json:"poster"`
	Producer      *Ref      `json:"producer,omitempty"`
	Actors        []Ref     `json:"actors"`
	IsExternal    bool      `json:"isExternal"`
	ExternalID    string    `json:"externalId,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

func (m Movie) ProducerID() string {
	if m.Producer == nil {
		return ""
	}
	return m.Producer.ID
}

func (m Movie) ActorIDs() []string {
	ids := make([]string, 0, len(m.Actors))
	for _, a := range m.Actors {
		ids = append(ids, a.ID)
	}
	return ids
}

// Validate checks a locally authored movie. now bounds the release year.
func (m Movie) Validate(now time.Time) error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	if m.YearOfRelease < FirstFilmYear || m.YearOfRelease > now.Year() {
		return ErrInvalidYear
	}
	if len([]rune(strings.TrimSpace(m.Plot))) < MinPlotLength {
		return ErrInvalidPlot
	}
	if strings.TrimSpace(m.Poster) == "" {
		return ErrPosterRequired
	}
	if strings.TrimSpace(m.ProducerID()) == "" {
		return ErrProducerRequired
	}
	return nil
}

// Input is a movie as submitted for creation.
type Input struct {
	Name          string
	YearOfRelease int
	Plot          string
	Poster        string
	ProducerID    string
	ActorIDs      []string
}

func (in Input) Movie() Movie {
	m := Movie{
		Name:          strings.TrimSpace(in.Name),
		YearOfRelease: in.YearOfRelease,
		Plot:          strings.TrimSpace(in.Plot),
		Poster:        strings.TrimSpace(in.Poster),
		Actors:        refs(in.ActorIDs),
	}
	if id := strings.TrimSpace(in.ProducerID); id != "" {
		m.Producer = &Ref{ID: id}
	}
	return m
}

// Patch holds the fields of a partial update; nil fields are left unchanged.
type Patch struct {
	Name          *string
	YearOfRelease *int
	Plot          *string
	Poster        *string
	ProducerID    *string
	ActorIDs      *[]string
}

func (p Patch) Apply(m Movie) Movie {
	if p.Name != nil {
		m.Name = strings.TrimSpace(*p.Name)
	}
	if p.YearOfRelease != nil {
		m.YearOfRelease = *p.YearOfRelease
	}
	if p.Plot != nil {
		m.Plot = strings.TrimSpace(*p.Plot)
	}
	if p.Poster != nil {
		m.Poster = strings.TrimSpace(*p.Poster)
	}
	if p.ProducerID != nil {
		m.Producer = &Ref{ID: strings.TrimSpace(*p.ProducerID)}
	}
	if p.ActorIDs != nil {
		m.Actors = refs(*p.ActorIDs)
	}
	return m
}

func (p Patch) TouchesReferences() bool {
	return p.ProducerID != nil || p.ActorIDs != nil
}

// refs drops blanks and duplicates while keeping the submitted order.
func refs(ids []string) []Ref {
	out := make([]Ref, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Ref{ID: id})
	}
	return out
}

// IsExternalID reports whether id has the shape of an IMDb title id.
func IsExternalID(id string) bool {
	if len(id) <= len(ExternalPrefix) || !strings.HasPrefix(id, ExternalPrefix) {
		return false
	}
	for _, r := range id[len(ExternalPrefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
