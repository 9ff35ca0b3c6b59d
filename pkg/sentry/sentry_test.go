package sentry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "https://public@sentry.example.com/1"

// captureHub returns a hub whose events are collected instead of sent.
func captureHub(t *testing.T) (*sentrygo.Hub, *[]*sentrygo.Event) {
	t.Helper()
	var events []*sentrygo.Event
	client, err := sentrygo.NewClient(sentrygo.ClientOptions{
		Dsn: testDSN,
		BeforeSend: func(event *sentrygo.Event, _ *sentrygo.EventHint) *sentrygo.Event {
			events = append(events, event)
			return nil
		},
	})
	require.NoError(t, err)
	return sentrygo.NewHub(client, sentrygo.NewScope()), &events
}

func requestContext(hub *sentrygo.Hub) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/movies", nil), httptest.NewRecorder())
	if hub != nil {
		c.Set("sentry", hub)
	}
	return c
}

func TestReport_Error(t *testing.T) {
	t.Run("sends tags and extras through the request hub", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("SENTRY_DSN", testDSN)
		hub, events := captureHub(t)

		WithContext(requestContext(hub)).
			WithTag("request_id", "req-1").
			WithTag("route", "").
			WithExtra("status", 500).
			Error(errors.New("omdb: connection refused"))

		require.Len(t, *events, 1)
		event := (*events)[0]
		assert.Equal(t, sentrygo.LevelError, event.Level)
		assert.Equal(t, "req-1", event.Tags["request_id"])
		assert.NotContains(t, event.Tags, "route", "empty tags are skipped")
		assert.Equal(t, 500, event.Extra["status"])
		require.NotEmpty(t, event.Exception)
		assert.Equal(t, "omdb: connection refused", event.Exception[0].Value)
	})

	t.Run("nothing is sent in the local environment", func(t *testing.T) {
		t.Setenv("APP_ENV", "local")
		t.Setenv("SENTRY_DSN", testDSN)
		hub, events := captureHub(t)

		WithContext(requestContext(hub)).Error(errors.New("boom"))

		assert.Empty(t, *events)
	})

	t.Run("nothing is sent without a DSN", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("SENTRY_DSN", "")
		hub, events := captureHub(t)

		WithContext(requestContext(hub)).Error(errors.New("boom"))

		assert.Empty(t, *events)
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("SENTRY_DSN", testDSN)
		hub, events := captureHub(t)

		WithContext(requestContext(hub)).Error(nil)

		assert.Empty(t, *events)
	})
}

func TestReport_Hub(t *testing.T) {
	hub, _ := captureHub(t)

	assert.Same(t, hub, WithContext(requestContext(hub)).hub())
	assert.Same(t, sentrygo.CurrentHub(), WithContext(requestContext(nil)).hub())
	assert.Same(t, sentrygo.CurrentHub(), WithContext(nil).hub())
}
