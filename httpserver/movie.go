package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"moviecatalog/movie"
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("", s.handleListMovies)
	g.GET("/search", s.handleSearchMovies)
	g.POST("", s.handleCreateMovie)
	g.GET("/:id", s.handleGetMovie)
	g.PUT("/:id", s.handleUpdateMovie)
	g.DELETE("/:id", s.handleDeleteMovie)
}

// handleListMovies godoc
// @Summary List Movies
// @Description Local movies followed by OMDb results, paginated
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size (1-100), default 10"
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/movies [get]
func (s *Server) handleListMovies(c echo.Context) error {
	p, err := parseListParams(c, "search")
	if err != nil {
		return err
	}

	page, err := s.MovieService.List(c.Request().Context(), movie.ListQuery(p))
	if err != nil {
		return err
	}
	return writePagedList(c, http.StatusOK, page)
}

// handleSearchMovies godoc
// @Summary Search Movies
// @Description Same merged listing as GET /movies, keyed by the query parameter
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param query query string false "Search term"
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size (1-100), default 10"
// @Success 200 {object} APIResponse
// @Router /api/movies/search [get]
func (s *Server) handleSearchMovies(c echo.Context) error {
	p, err := parseListParams(c, "query", "search")
	if err != nil {
		return err
	}

	page, err := s.MovieService.Search(c.Request().Context(), movie.ListQuery(p))
	if err != nil {
		return err
	}
	return writePagedList(c, http.StatusOK, page)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Description Local movie by id, or an OMDb title by IMDb id
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie id or IMDb id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	m, err := s.MovieService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, m)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movie body MovieRequest true "Movie"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/movies [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	var req MovieRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := s.MovieService.Create(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusCreated, m)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Partial update; external movies are read-only
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie id"
// @Param movie body MoviePatchRequest true "Changed fields"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	var req MoviePatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := s.MovieService.Update(c.Request().Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, m)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Tags movies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Movie id"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/movies/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	if err := s.MovieService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return writeMessage(c, http.StatusOK, "Movie removed")
}
