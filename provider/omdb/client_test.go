package omdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moviecatalog/movie"
	"moviecatalog/provider/omdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *omdb.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return omdb.New(srv.URL, "secret", 5*time.Second, srv.Client())
}

func TestSearchMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("maps search results", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
			assert.Equal(t, "alien", r.URL.Query().Get("s"))
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			_, _ = w.Write([]byte(`{
				"Search": [
					{"Title":"Alien","Year":"1979","imdbID":"tt0078748","Type":"movie","Poster":"https://img/alien.jpg"},
					{"Title":"Alien Nation","Year":"1989–1990","imdbID":"tt0096533","Type":"series","Poster":"N/A"}
				],
				"totalResults":"42","Response":"True"}`))
		})

		res, err := c.SearchMovies(ctx, "alien", 2)

		require.NoError(t, err)
		assert.Equal(t, 42, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, movie.Movie{
			Name:          "Alien",
			YearOfRelease: 1979,
			Poster:        "https://img/alien.jpg",
			Actors:        []movie.Ref{},
			IsExternal:    true,
			ExternalID:    "tt0078748",
		}, res.Items[0])
		assert.Equal(t, 1989, res.Items[1].YearOfRelease)
		assert.Empty(t, res.Items[1].Poster)
	})

	t.Run("no match is an empty result", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
		})

		res, err := c.SearchMovies(ctx, "zzzzzz", 1)

		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.Zero(t, res.Total)
	})

	t.Run("api error", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
		})

		_, err := c.SearchMovies(ctx, "alien", 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid API key!")
	})

	t.Run("server failure", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.SearchMovies(ctx, "alien", 1)

		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		c := omdb.New("http://127.0.0.1:1", "", time.Second, nil)

		_, err := c.SearchMovies(ctx, "alien", 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key")
	})
}

func TestGetMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("maps detail", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tt0078748", r.URL.Query().Get("i"))
			assert.Equal(t, "full", r.URL.Query().Get("plot"))
			_, _ = w.Write([]byte(`{
				"Title":"Alien","Year":"1979","Plot":"The crew of a commercial spacecraft encounters a deadly lifeform.",
				"Poster":"https://img/alien.jpg","Actors":"Sigourney Weaver, Tom Skerritt",
				"Director":"Ridley Scott","Production":"N/A","imdbID":"tt0078748","Response":"True"}`))
		})

		m, err := c.GetMovie(ctx, "tt0078748")

		require.NoError(t, err)
		assert.Equal(t, "Alien", m.Name)
		assert.Equal(t, 1979, m.YearOfRelease)
		assert.True(t, m.IsExternal)
		assert.Equal(t, "tt0078748", m.ExternalID)
		assert.Equal(t, []movie.Ref{{Name: "Sigourney Weaver"}, {Name: "Tom Skerritt"}}, m.Actors)
		require.NotNil(t, m.Producer)
		assert.Equal(t, "Ridley Scott", m.Producer.Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID. Movie not found!"}`))
		})

		_, err := c.GetMovie(ctx, "tt9999999")

		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})

		_, err := c.GetMovie(ctx, "tt0078748")

		assert.Error(t, err)
	})
}
