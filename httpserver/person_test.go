package httpserver_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"moviecatalog/catalog"
	"moviecatalog/httpserver"
	"moviecatalog/person"
)

func newPersonServer() (*httpserver.Server, *MockPersonService, *MockPersonService) {
	actors := new(MockPersonService)
	producers := new(MockPersonService)
	server := httpserver.Default(testConfig())
	server.ActorService = actors
	server.ProducerService = producers
	return server, actors, producers
}

func validPersonBody() map[string]string {
	return map[string]string{
		"name":        "Keanu Reeves",
		"gender":      "male",
		"dateOfBirth": "1964-09-02",
		"bio":         "Canadian actor known for The Matrix.",
	}
}

func TestListPeople(t *testing.T) {
	server, actors, producers := newPersonServer()
	actors.On("List", mock.Anything, person.ListQuery{Search: "keanu"}).Return(catalog.Page[person.Person]{
		Items:    []person.Person{{ID: "a1", Name: "Keanu Reeves"}},
		Page:     1,
		PageSize: 10,
		Pages:    1,
		Total:    1,
	}, nil).Once()
	producers.On("List", mock.Anything, person.ListQuery{Page: 3}).Return(catalog.Page[person.Person]{Page: 3, PageSize: 10}, nil).Once()

	rec := doRequest(t, server, http.MethodGet, "/api/actors?search=keanu", nil)
	requestStatus(t, rec, http.StatusOK)
	got := decodeAPIResult[httpserver.PagedResult[person.Person]](t, rec)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "Keanu Reeves", got.Data[0].Name)

	rec = doRequest(t, server, http.MethodGet, "/api/producers?page=3", nil)
	requestStatus(t, rec, http.StatusOK)

	actors.AssertExpectations(t)
	producers.AssertExpectations(t)
}

func TestGetPerson(t *testing.T) {
	server, actors, producers := newPersonServer()
	actors.On("Get", mock.Anything, "6384").Return(person.Person{Name: "Keanu Reeves", IsExternal: true, ExternalID: "6384"}, nil).Once()
	producers.On("Get", mock.Anything, "nope").Return(person.Person{}, person.ErrProducerNotFound).Once()

	rec := doRequest(t, server, http.MethodGet, "/api/actors/6384", nil)
	requestStatus(t, rec, http.StatusOK)
	assert.True(t, decodeAPIResult[person.Person](t, rec).IsExternal)

	rec = doRequest(t, server, http.MethodGet, "/api/producers/nope", nil)
	requestStatus(t, rec, http.StatusNotFound)
	assert.Equal(t, "Producer not found", decodeAPIResponse(t, rec).Message)
}

func TestCreatePerson(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		server, actors, _ := newPersonServer()
		actors.On("Create", mock.Anything, person.Input{
			Name:        "Keanu Reeves",
			Gender:      "male",
			DateOfBirth: "1964-09-02",
			Bio:         "Canadian actor known for The Matrix.",
		}).Return(person.Person{ID: "a1", Name: "Keanu Reeves"}, nil).Once()

		rec := doRequest(t, server, http.MethodPost, "/api/actors", validPersonBody())

		requestStatus(t, rec, http.StatusCreated)
		assert.Equal(t, "a1", decodeAPIResult[person.Person](t, rec).ID)
	})

	tomorrow := time.Now().UTC().AddDate(0, 0, 2).Format(person.DateLayout)
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"unknown gender", "gender", "robot"},
		{"birth date in the future", "dateOfBirth", tomorrow},
		{"birth date not a date", "dateOfBirth", "02/09/1964"},
		{"short bio", "bio", "actor"},
		{"photo is not a url", "photo", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, producers := newPersonServer()
			body := validPersonBody()
			body[tt.field] = tt.value

			rec := doRequest(t, server, http.MethodPost, "/api/producers", body)

			requestStatus(t, rec, http.StatusBadRequest)
			assert.Contains(t, decodeAPIResponse(t, rec).Message, tt.field)
			producers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdatePerson(t *testing.T) {
	server, actors, _ := newPersonServer()
	bio := "Plays Neo and John Wick."
	actors.On("Update", mock.Anything, "a1", person.Patch{Bio: &bio}).Return(person.Person{ID: "a1", Bio: bio}, nil).Once()
	actors.On("Update", mock.Anything, "6384", mock.Anything).Return(person.Person{}, person.ErrExternalActor).Once()

	rec := doRequest(t, server, http.MethodPut, "/api/actors/a1", map[string]string{"bio": bio})
	requestStatus(t, rec, http.StatusOK)
	assert.Equal(t, bio, decodeAPIResult[person.Person](t, rec).Bio)

	rec = doRequest(t, server, http.MethodPut, "/api/actors/6384", map[string]string{"bio": bio})
	requestStatus(t, rec, http.StatusForbidden)
}

func TestDeletePerson(t *testing.T) {
	server, actors, producers := newPersonServer()
	actors.On("Delete", mock.Anything, "a1").Return(nil).Once()
	producers.On("Delete", mock.Anything, "p1").Return(nil).Once()

	rec := doRequest(t, server, http.MethodDelete, "/api/actors/a1", nil)
	requestStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Actor removed", decodeAPIResult[map[string]string](t, rec)["message"])

	rec = doRequest(t, server, http.MethodDelete, "/api/producers/p1", nil)
	requestStatus(t, rec, http.StatusOK)
	assert.Equal(t, "Producer removed", decodeAPIResult[map[string]string](t, rec)["message"])
}
