// Package tmdb is a client for the people endpoints of The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"moviecatalog/catalog"
	"moviecatalog/person"
)

// PageSize is the fixed number of results TMDB returns per search page.
const PageSize = 20

type Config struct {
	BaseURL  string
	ImageURL string
	APIKey   string
	Timeout  time.Duration
}

type Client struct {
	url            string
	imageURL       string
	role           person.Role
	cl             *http.Client
	prepareRequest func(r *http.Request) (*http.Request, error)
}

// New returns a client serving actors. Use ForRole for producers.
func New(cfg Config, cl *http.Client) *Client {
	if cl == nil {
		cl = &http.Client{Timeout: cfg.Timeout}
	}
	key := cfg.APIKey
	return &Client{
		url:      strings.TrimRight(cfg.BaseURL, "/"),
		imageURL: strings.TrimRight(cfg.ImageURL, "/"),
		role:     person.RoleActor,
		cl:       cl,
		prepareRequest: func(r *http.Request) (*http.Request, error) {
			if key == "" {
				return nil, errors.New("tmdb api key is not configured")
			}
			q := r.URL.Query()
			q.Set("api_key", key)
			r.URL.RawQuery = q.Encode()
			return r, nil
		},
	}
}

// ForRole returns a copy of the client whose not-found errors belong to role.
func (c *Client) ForRole(role person.Role) *Client {
	cp := *c
	cp.role = role
	return &cp
}

func (c *Client) PageSize() int {
	return PageSize
}

type searchItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Gender      int    `json:"gender"`
	ProfilePath string `json:"profile_path"`
}

type searchResponse struct {
	Page         int          `json:"page"`
	Results      []searchItem `json:"results"`
	TotalResults int          `json:"total_results"`
}

type detailResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Gender      int    `json:"gender"`
	Birthday    string `json:"birthday"`
	Biography   string `json:"biography"`
	ProfilePath string `json:"profile_path"`
}

func (c *Client) SearchPeople(ctx context.Context, query string, page int) (catalog.SearchResult[person.Person], error) {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(query))
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("include_adult", "false")

	var res searchResponse
	if _, err := c.get(ctx, "/search/person", params, &res); err != nil {
		return catalog.SearchResult[person.Person]{}, errors.Wrap(err, "tmdb search")
	}

	items := make([]person.Person, 0, len(res.Results))
	for _, r := range res.Results {
		items = append(items, person.Person{
			Name:       r.Name,
			Gender:     gender(r.Gender),
			Photo:      c.image(r.ProfilePath),
			IsExternal: true,
			ExternalID: strconv.FormatInt(r.ID, 10),
		})
	}
	return catalog.SearchResult[person.Person]{Items: items, Total: res.TotalResults}, nil
}

func (c *Client) GetPerson(ctx context.Context, id string) (person.Person, error) {
	var res detailResponse
	found, err := c.get(ctx, "/person/"+url.PathEscape(strings.TrimSpace(id)), nil, &res)
	if err != nil {
		return person.Person{}, errors.Wrap(err, "tmdb detail")
	}
	if !found {
		return person.Person{}, c.role.NotFound()
	}

	p := person.Person{
		Name:       res.Name,
		Gender:     gender(res.Gender),
		Bio:        strings.TrimSpace(res.Biography),
		Photo:      c.image(res.ProfilePath),
		IsExternal: true,
		ExternalID: strconv.FormatInt(res.ID, 10),
	}
	if res.Birthday != "" {
		if dob, err := time.Parse(person.DateLayout, res.Birthday); err == nil {
			p.DateOfBirth = dob
		}
	}
	return p, nil
}

// get decodes a successful response into out. It reports found=false for
// a 404 instead of an error.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", c.url, path), nil)
	if err != nil {
		return false, errors.Wrap(err, "create request")
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	req, err = c.prepareRequest(req)
	if err != nil {
		return false, errors.Wrap(err, "prepare request")
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			StatusMessage string `json:"status_message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return false, errors.Errorf("unexpected status %d: %s", resp.StatusCode, e.StatusMessage)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, "decode response")
	}
	return true, nil
}

func (c *Client) image(path string) string {
	if path == "" {
		return ""
	}
	return c.imageURL + path
}

// gender maps TMDB's numeric codes: 1 female, 2 male, anything else other.
func gender(g int) person.Gender {
	switch g {
	case 1:
		return person.GenderFemale
	case 2:
		return person.GenderMale
	}
	return person.GenderOther
}
