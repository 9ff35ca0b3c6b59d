package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"moviecatalog/person"
)

// personHandlers serves the routes of one role.
type personHandlers struct {
	s       *Server
	role    person.Role
	removed string
}

func (s *Server) RegisterPersonRoutes(g *echo.Group, role person.Role) {
	h := personHandlers{s: s, role: role, removed: "Actor removed"}
	if role == person.RoleProducer {
		h.removed = "Producer removed"
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h personHandlers) service() person.Service {
	if h.role == person.RoleProducer {
		return h.s.ProducerService
	}
	return h.s.ActorService
}

// list godoc
// @Summary List Actors / Producers
// @Description Local people sorted by name followed by TMDB results, paginated
// @Tags people
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, default 1"
// @Param limit query int false "Page size (1-100), default 10"
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} APIResponse
// @Router /api/actors [get]
// @Router /api/producers [get]
func (h personHandlers) list(c echo.Context) error {
	p, err := parseListParams(c, "search")
	if err != nil {
		return err
	}

	page, err := h.service().List(c.Request().Context(), person.ListQuery(p))
	if err != nil {
		return err
	}
	return writePagedList(c, http.StatusOK, page)
}

// get godoc
// @Summary Get Actor / Producer
// @Description Local person by id, or a TMDB person by numeric id
// @Tags people
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person id or TMDB id"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/actors/{id} [get]
// @Router /api/producers/{id} [get]
func (h personHandlers) get(c echo.Context) error {
	p, err := h.service().Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, p)
}

// create godoc
// @Summary Create Actor / Producer
// @Tags people
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param person body PersonRequest true "Person"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/actors [post]
// @Router /api/producers [post]
func (h personHandlers) create(c echo.Context) error {
	var req PersonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service().Create(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusCreated, p)
}

// update godoc
// @Summary Update Actor / Producer
// @Tags people
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person id"
// @Param person body PersonPatchRequest true "Changed fields"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/actors/{id} [put]
// @Router /api/producers/{id} [put]
func (h personHandlers) update(c echo.Context) error {
	var req PersonPatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service().Update(c.Request().Context(), c.Param("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return writeSuccess(c, http.StatusOK, p)
}

// delete godoc
// @Summary Delete Actor / Producer
// @Tags people
// @Produce json
// @Security BearerAuth
// @Param id path string true "Person id"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/actors/{id} [delete]
// @Router /api/producers/{id} [delete]
func (h personHandlers) delete(c echo.Context) error {
	if err := h.service().Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return writeMessage(c, http.StatusOK, h.removed)
}
