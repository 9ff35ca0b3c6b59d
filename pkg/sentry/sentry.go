package sentry

import (
	"os"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// FlushTime bounds how long shutdown waits for buffered events.
var FlushTime = 2 * time.Second

// Report collects the scope of one event before it is sent.
type Report struct {
	context echo.Context
	tags    map[string]string
	extras  map[string]interface{}
}

// WithContext starts a report bound to the hub of the request, if any.
func WithContext(c echo.Context) *Report {
	return &Report{context: c}
}

func (r *Report) WithTag(key, value string) *Report {
	if value == "" {
		return r
	}
	if r.tags == nil {
		r.tags = make(map[string]string)
	}
	r.tags[key] = value
	return r
}

func (r *Report) WithExtra(key string, value interface{}) *Report {
	if r.extras == nil {
		r.extras = make(map[string]interface{})
	}
	r.extras[key] = value
	return r
}

// Error captures err at error level. Nothing is sent in the local
// environment or without a DSN.
func (r *Report) Error(err error) {
	if !enabled() || err == nil {
		return
	}
	hub := r.hub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		scope.SetLevel(sentrygo.LevelError)
		scope.SetTags(r.tags)
		scope.SetExtras(r.extras)
		hub.CaptureException(err)
	})
}

func (r *Report) hub() *sentrygo.Hub {
	if r.context != nil {
		if hub := sentryecho.GetHubFromContext(r.context); hub != nil {
			return hub
		}
	}
	return sentrygo.CurrentHub()
}

func enabled() bool {
	return os.Getenv("APP_ENV") != "local" && os.Getenv("SENTRY_DSN") != ""
}
