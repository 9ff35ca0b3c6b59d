package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"moviecatalog/auth"
	"moviecatalog/errs"
	pkgjwt "moviecatalog/pkg/jwt"
)

const (
	oauthStateCookie = "oauth_state"
	userIDKey        = "user_id"
)

var errNotAuthorized = errs.Errorf(errs.EUNAUTHORIZED, "Not authorized, token failed")

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
}

func tokenResponse(t auth.TokenPair) TokenResponse {
	return TokenResponse{Token: t.AccessToken, RefreshToken: t.RefreshToken, Username: t.Username}
}

func (s *Server) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", s.handleRegister)
	g.POST("/login", s.handleLogin)
	g.POST("/refresh", s.handleRefresh)
	g.GET("/google/login", s.handleGoogleLogin)
	g.GET("/google/callback", s.handleGoogleCallback)
}

func (s *Server) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", s.handleProfile)
}

func (s *Server) jwtMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(s.Config.Auth.JWTSecret),
		SigningMethod: "HS256",
		ErrorHandler: func(_ echo.Context, _ error) error {
			return errNotAuthorized
		},
	})
}

// requireAccessToken rejects refresh tokens on guarded routes and stores the
// caller's user id in the context.
func requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return errNotAuthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return errNotAuthorized
		}
		if typ, _ := claims["type"].(string); typ != pkgjwt.TypeAccess {
			return errNotAuthorized
		}
		id, _ := claims["user_id"].(string)
		if id == "" {
			return errNotAuthorized
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

// handleRegister godoc
// @Summary User Register
// @Description Register a new user and return access + refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body RegisterRequest true "Register payload"
// @Success 201 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Router /api/auth/register [post]
func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, tokenResponse(tokens))
}

// handleLogin godoc
// @Summary User Login
// @Description Authenticate user and return access + refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login Credentials"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Router /api/auth/login [post]
func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Account temporarily locked")
		}
		return err
	}

	return writeSuccess(c, http.StatusOK, tokenResponse(tokens))
}

// handleRefresh godoc
// @Summary Refresh Access Token
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body RefreshRequest true "Refresh Token"
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/auth/refresh [post]
func (s *Server) handleRefresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tokens, err := s.AuthService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, tokenResponse(tokens))
}

// handleProfile godoc
// @Summary Current User
// @Description Profile of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/auth/profile [get]
func (s *Server) handleProfile(c echo.Context) error {
	id, _ := c.Get(userIDKey).(string)

	u, err := s.UserService.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusOK, u)
}

// handleGoogleLogin godoc
// @Summary Google OAuth Login
// @Description Get Google OAuth2 authorization URL
// @Tags auth
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 501 {object} APIResponse
// @Router /api/auth/google/login [get]
func (s *Server) handleGoogleLogin(c echo.Context) error {
	state, err := generateOAuthState(32)
	if err != nil {
		return err
	}

	authURL, err := s.AuthService.GoogleAuthURL(state)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((5 * time.Minute).Seconds()),
	})

	return writeSuccess(c, http.StatusOK, map[string]string{"authUrl": authURL})
}

// handleGoogleCallback godoc
// @Summary Google OAuth Callback
// @Description Exchange Google OAuth2 code for tokens
// @Tags auth
// @Produce json
// @Param code query string true "OAuth code"
// @Param state query string true "OAuth state"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /api/auth/google/callback [get]
func (s *Server) handleGoogleCallback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return errs.Errorf(errs.EINVALID, "missing code or state")
	}

	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		return errs.Errorf(errs.EUNAUTHORIZED, "invalid oauth state")
	}

	tokens, err := s.AuthService.LoginWithGoogle(c.Request().Context(), code)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})

	return writeSuccess(c, http.StatusOK, tokenResponse(tokens))
}

func generateOAuthState(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
