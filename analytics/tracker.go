package analytics

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	// SessionName is the cookie holding the visitor session.
	SessionName = "analytics_session"

	sessionKey    = "session_id"
	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days in seconds
)

// Tracker is echo middleware that records one event per handled request.
// It requires session.Middleware to run before it.
type Tracker struct {
	service  *Service
	limiter  *rateLimiter
	secure   bool
	skip     []string
	timeout  time.Duration
	inFlight sync.WaitGroup
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) TrackerOption {
	return func(t *Tracker) {
		t.secure = secure
	}
}

// WithSkipPrefixes adds path prefixes that are never tracked.
func WithSkipPrefixes(prefixes ...string) TrackerOption {
	return func(t *Tracker) {
		t.skip = append(t.skip, prefixes...)
	}
}

// WithEventLimit caps the events recorded per session within window.
func WithEventLimit(max int, window time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.limiter.stop()
		t.limiter = newRateLimiter(max, window)
	}
}

// NewTracker creates a Tracker. Each session may record 120 events per minute.
func NewTracker(service *Service, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		service: service,
		limiter: newRateLimiter(120, time.Minute),
		skip:    []string{"/static", "/public/"},
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Middleware returns the tracking middleware.
func (t *Tracker) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if t.skipped(path) {
				return next(c)
			}

			sessionID := t.sessionID(c)
			isAPICall := strings.HasPrefix(path, "/api/")

			// Continue with the request first
			err := next(c)
			if err != nil {
				t.drop("error")
				return err
			}
			if c.Response().Status == http.StatusNotModified {
				t.drop("not_modified")
				return nil
			}
			if IsBot(c.Request().UserAgent()) {
				t.drop("bot")
				return nil
			}
			if !t.limiter.allow(sessionID) {
				t.drop("rate_limited")
				return nil
			}

			logger := c.Logger()
			t.inFlight.Add(1)
			go func() {
				defer t.inFlight.Done()
				ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
				defer cancel()

				if isAPICall {
					if err := t.service.RecordAPICall(ctx, sessionID, path); err != nil {
						logger.Errorf("Failed to record API call analytics: %v", err)
					}
					return
				}
				// Every page counts as a visit to the home page.
				if err := t.service.RecordPageView(ctx, sessionID, "/"); err != nil {
					logger.Errorf("Failed to record page view analytics: %v", err)
				}
			}()
			return nil
		}
	}
}

// Wait blocks until every event recording started so far has finished.
func (t *Tracker) Wait() {
	t.inFlight.Wait()
}

// Close stops the limiter and drains pending recordings.
func (t *Tracker) Close() {
	t.limiter.stop()
	t.Wait()
}

func (t *Tracker) skipped(path string) bool {
	for _, prefix := range t.skip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (t *Tracker) drop(reason string) {
	t.service.metrics.EventsDropped.WithLabelValues(reason).Inc()
}

// sessionID reads the visitor session from its cookie, creating one when
// missing. A broken session store still yields a usable id.
func (t *Tracker) sessionID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		c.Logger().Warnf("analytics session: %v", err)
		if sess == nil {
			return t.service.SessionID("")
		}
	}

	existing, _ := sess.Values[sessionKey].(string)
	id := t.service.SessionID(existing)
	if id == existing {
		return id
	}

	sess.Values[sessionKey] = id
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   t.secure,
	}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Warnf("save analytics session: %v", err)
	}
	return id
}
