// Package person holds actors and producers. Both share one shape and are
// told apart by Role; each role lives in its own collection.
package person

import (
	"strings"
	"time"

	"moviecatalog/errs"
)

const (
	MinBioLength = 10
	DateLayout   = "2006-01-02"
)

type Role string

const (
	RoleActor    Role = "actor"
	RoleProducer Role = "producer"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

var (
	ErrActorNotFound      = errs.Errorf(errs.ENOTFOUND, "Actor not found")
	ErrProducerNotFound   = errs.Errorf(errs.ENOTFOUND, "Producer not found")
	ErrExternalActor      = errs.Errorf(errs.EFORBIDDEN, "External actors cannot be modified")
	ErrExternalProducer   = errs.Errorf(errs.EFORBIDDEN, "External producers cannot be modified")
	ErrNameRequired       = errs.Errorf(errs.EINVALID, "Name is required")
	ErrInvalidGender      = errs.Errorf(errs.EINVALID, "Gender must be one of male, female, other")
	ErrInvalidDateOfBirth = errs.Errorf(errs.EINVALID, "Date of birth must be a past date formatted as YYYY-MM-DD")
	ErrInvalidBio         = errs.Errorf(errs.EINVALID, "Bio must be at least 10 characters long")
	ErrInvalidPagination  = errs.Errorf(errs.EINVALID, "page and limit must be positive integers")
)

// NotFound is the not-found error for the role.
func (r Role) NotFound() error {
	if r == RoleProducer {
		return ErrProducerNotFound
	}
	return ErrActorNotFound
}

// Immutable is the error returned when an external record of the role is
// about to be changed.
func (r Role) Immutable() error {
	if r == RoleProducer {
		return ErrExternalProducer
	}
	return ErrExternalActor
}

type Person struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Gender      Gender    `json:"gender"`
	DateOfBirth time.Time `json:"dateOfBirth,omitzero"`
	Bio         string    `json:"bio"`
	Photo       string    `json:"photo,omitempty"`
	IsExternal  bool      `json:"isExternal"`
	ExternalID  string    `json:"externalId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// External reports whether the person was sourced from the provider.
func (p Person) External() bool {
	return p.IsExternal || p.ExternalID != ""
}

func (p Person) Validate(now time.Time) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if !p.Gender.Valid() {
		return ErrInvalidGender
	}
	if p.DateOfBirth.IsZero() || p.DateOfBirth.After(now) {
		return ErrInvalidDateOfBirth
	}
	if len([]rune(strings.TrimSpace(p.Bio))) < MinBioLength {
		return ErrInvalidBio
	}
	return nil
}

type Input struct {
	Name        string
	Gender      string
	DateOfBirth string
	Bio         string
	Photo       string
}

func (in Input) Person() (Person, error) {
	dob, err := parseDate(in.DateOfBirth)
	if err != nil {
		return Person{}, err
	}
	return Person{
		Name:        strings.TrimSpace(in.Name),
		Gender:      Gender(strings.ToLower(strings.TrimSpace(in.Gender))),
		DateOfBirth: dob,
		Bio:         strings.TrimSpace(in.Bio),
		Photo:       strings.TrimSpace(in.Photo),
	}, nil
}

type Patch struct {
	Name        *string
	Gender      *string
	DateOfBirth *string
	Bio         *string
	Photo       *string
}

func (pt Patch) Apply(p Person) (Person, error) {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Gender != nil {
		p.Gender = Gender(strings.ToLower(strings.TrimSpace(*pt.Gender)))
	}
	if pt.DateOfBirth != nil {
		dob, err := parseDate(*pt.DateOfBirth)
		if err != nil {
			return Person{}, err
		}
		p.DateOfBirth = dob
	}
	if pt.Bio != nil {
		p.Bio = strings.TrimSpace(*pt.Bio)
	}
	if pt.Photo != nil {
		p.Photo = strings.TrimSpace(*pt.Photo)
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDateOfBirth
	}
	return t, nil
}
