//nolint:unused
package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"moviecatalog/auth"
	"moviecatalog/catalog"
	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/person"
	"moviecatalog/pkg/config"
	"moviecatalog/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret = "test-jwt-secret"
	testUserID    = "65f0aa00aa00aa00aa00aa01"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testJWTSecret
	return cfg
}

func signTestToken() (string, error) {
	return signToken("access", time.Hour)
}

func signToken(tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": testUserID,
		"email":   "neo@matrix.io",
		"type":    tokenType,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(testJWTSecret))
}

// apiResponse mirrors httpserver.APIResponse with a raw result.
type apiResponse struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Info    string          `json:"info"`
}

func decodeAPIResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeAPIResult[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	resp := decodeAPIResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Result, &out), string(resp.Result))
	return out
}

// doRequest sends body as JSON with a valid access token.
func doRequest(t *testing.T, server *httpserver.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	token, err := signTestToken()
	require.NoError(t, err)
	return doRequestWithToken(t, server, method, path, body, token)
}

func doRequestWithToken(t *testing.T, server *httpserver.Server, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) AddUser(ctx context.Context, u user.User) (user.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (auth.TokenPair, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) GoogleAuthURL(state string) (string, error) {
	args := m.Called(state)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, code string) (auth.TokenPair, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.TokenPair), args.Error(1)
}

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) List(ctx context.Context, q movie.ListQuery) (catalog.Page[movie.Movie], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(catalog.Page[movie.Movie]), args.Error(1)
}

func (m *MockMovieService) Search(ctx context.Context, q movie.ListQuery) (catalog.Page[movie.Movie], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(catalog.Page[movie.Movie]), args.Error(1)
}

func (m *MockMovieService) Get(ctx context.Context, id string) (movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Create(ctx context.Context, in movie.Input) (movie.Movie, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Update(ctx context.Context, id string, p movie.Patch) (movie.Movie, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(movie.Movie), args.Error(1)
}

func (m *MockMovieService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPersonService struct {
	mock.Mock
}

func (m *MockPersonService) List(ctx context.Context, q person.ListQuery) (catalog.Page[person.Person], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(catalog.Page[person.Person]), args.Error(1)
}

func (m *MockPersonService) Get(ctx context.Context, id string) (person.Person, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(person.Person), args.Error(1)
}

func (m *MockPersonService) Create(ctx context.Context, in person.Input) (person.Person, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(person.Person), args.Error(1)
}

func (m *MockPersonService) Update(ctx context.Context, id string, p person.Patch) (person.Person, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(person.Person), args.Error(1)
}

func (m *MockPersonService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func requestStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}
