// Package omdb is a client for the OMDb movie metadata API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"moviecatalog/catalog"
	"moviecatalog/movie"
)

// PageSize is the fixed number of results OMDb returns per search page.
const PageSize = 10

const notAvailable = "N/A"

type Client struct {
	url            string
	cl             *http.Client
	prepareRequest func(r *http.Request) (*http.Request, error)
}

// New returns a client for the API at baseURL. A nil http.Client gets one
// with the given timeout.
func New(baseURL, apiKey string, timeout time.Duration, cl *http.Client) *Client {
	if cl == nil {
		cl = &http.Client{Timeout: timeout}
	}
	return &Client{
		url: strings.TrimRight(baseURL, "/"),
		cl:  cl,
		prepareRequest: func(r *http.Request) (*http.Request, error) {
			if apiKey == "" {
				return nil, errors.New("omdb api key is not configured")
			}
			q := r.URL.Query()
			q.Set("apikey", apiKey)
			r.URL.RawQuery = q.Encode()
			return r, nil
		},
	}
}

func (c *Client) PageSize() int {
	return PageSize
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type searchResponse struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type detailResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Production string `json:"Production"`
	ImdbID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// SearchMovies runs a title search. A query OMDb has no match for yields an
// empty result rather than an error.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (catalog.SearchResult[movie.Movie], error) {
	var res searchResponse
	err := c.get(ctx, map[string]string{
		"s":    strings.TrimSpace(query),
		"page": strconv.Itoa(max(page, 1)),
	}, &res)
	if err != nil {
		return catalog.SearchResult[movie.Movie]{}, errors.Wrap(err, "omdb search")
	}

	if res.Response != "True" {
		if isNotFound(res.Error) {
			return catalog.SearchResult[movie.Movie]{}, nil
		}
		return catalog.SearchResult[movie.Movie]{}, errors.Errorf("omdb search: %s", res.Error)
	}

	total, err := strconv.Atoi(res.TotalResults)
	if err != nil {
		return catalog.SearchResult[movie.Movie]{}, errors.Wrapf(err, "omdb search: parse totalResults %q", res.TotalResults)
	}

	items := make([]movie.Movie, 0, len(res.Search))
	for _, s := range res.Search {
		items = append(items, movie.Movie{
			Name:          s.Title,
			YearOfRelease: parseYear(s.Year),
			Poster:        value(s.Poster),
			Actors:        []movie.Ref{},
			IsExternal:    true,
			ExternalID:    s.ImdbID,
		})
	}
	return catalog.SearchResult[movie.Movie]{Items: items, Total: total}, nil
}

// GetMovie fetches one title by IMDb id with the full plot.
func (c *Client) GetMovie(ctx context.Context, imdbID string) (movie.Movie, error) {
	var res detailResponse
	err := c.get(ctx, map[string]string{"i": strings.TrimSpace(imdbID), "plot": "full"}, &res)
	if err != nil {
		return movie.Movie{}, errors.Wrap(err, "omdb detail")
	}

	if res.Response != "True" {
		if isNotFound(res.Error) {
			return movie.Movie{}, movie.ErrMovieNotFound
		}
		return movie.Movie{}, errors.Errorf("omdb detail: %s", res.Error)
	}

	m := movie.Movie{
		Name:          res.Title,
		YearOfRelease: parseYear(res.Year),
		Plot:          value(res.Plot),
		Poster:        value(res.Poster),
		Actors:        names(res.Actors),
		IsExternal:    true,
		ExternalID:    res.ImdbID,
	}
	if p := value(res.Production); p != "" {
		m.Producer = &movie.Ref{Name: p}
	} else if d := value(res.Director); d != "" {
		m.Producer = &movie.Ref{Name: d}
	}
	return m, nil
}

func (c *Client) get(ctx context.Context, params map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/", c.url), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	q := req.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req, err = c.prepareRequest(req)
	if err != nil {
		return errors.Wrap(err, "prepare request")
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	// OMDb reports most failures in the body with a 200; anything else is
	// a transport level problem.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func isNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "incorrect imdb id")
}

var yearRegexp = regexp.MustCompile(`^\d{4}`)

// parseYear reads the leading year of values such as "1999" or "2008–2013".
func parseYear(s string) int {
	y, _ := strconv.Atoi(yearRegexp.FindString(s))
	return y
}

func value(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

func names(csv string) []movie.Ref {
	out := []movie.Ref{}
	for _, n := range strings.Split(value(csv), ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, movie.Ref{Name: n})
		}
	}
	return out
}
