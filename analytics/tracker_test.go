package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackedEcho(t *testing.T, opts ...TrackerOption) (*echo.Echo, *Service, *Tracker) {
	t.Helper()
	svc := NewService(setupTestStore(t), WithSummaryTTL(0))
	tracker := NewTracker(svc, opts...)
	t.Cleanup(tracker.Close)

	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret-test-secret-test-sec"))))
	e.Use(tracker.Middleware())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "home") })
	e.GET("/about", func(c echo.Context) error { return c.String(http.StatusOK, "about") })
	e.GET("/api/items", func(c echo.Context) error { return c.JSON(http.StatusOK, []string{}) })
	e.GET("/cached", func(c echo.Context) error { return c.NoContent(http.StatusNotModified) })
	e.GET("/public/app.css", func(c echo.Context) error { return c.String(http.StatusOK, "") })
	return e, svc, tracker
}

func do(e *echo.Echo, path string, cookies []*http.Cookie, ua string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func summaryOf(t *testing.T, svc *Service) *Summary {
	t.Helper()
	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	return sum
}

func TestTrackerRecordsPageViewsAndAPICalls(t *testing.T) {
	e, svc, tracker := newTrackedEcho(t)

	first := do(e, "/", nil, "")
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies, "expected a session cookie")
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	do(e, "/about", cookies, "")
	do(e, "/api/items", cookies, "")
	do(e, "/", nil, "")
	tracker.Wait()

	sum := summaryOf(t, svc)
	assert.Equal(t, int64(3), sum.TotalVisits, "pages count as visits to /")
	assert.Equal(t, int64(2), sum.UniqueUsers)
	assert.Equal(t, int64(1), sum.APIHits)
	assert.Equal(t, int64(1), sum.EndpointStats["/api/items"])
}

func TestTrackerReusesSessionCookie(t *testing.T) {
	e, _, _ := newTrackedEcho(t)

	first := do(e, "/", nil, "")
	cookies := first.Result().Cookies()
	second := do(e, "/", cookies, "")
	assert.Empty(t, second.Result().Cookies(), "existing session should not be rewritten")
}

func TestTrackerSkips(t *testing.T) {
	e, svc, tracker := newTrackedEcho(t)

	do(e, "/cached", nil, "")
	do(e, "/public/app.css", nil, "")
	do(e, "/", nil, "Mozilla/5.0 (compatible; Googlebot/2.1)")
	do(e, "/missing", nil, "")
	tracker.Wait()

	sum := summaryOf(t, svc)
	assert.Zero(t, sum.UniqueUsers)
	assert.Empty(t, sum.EndpointStats)
}

func TestTrackerLimitsPerSession(t *testing.T) {
	e, svc, tracker := newTrackedEcho(t, WithEventLimit(2, time.Minute))

	cookies := do(e, "/", nil, "").Result().Cookies()
	for i := 0; i < 5; i++ {
		do(e, "/", cookies, "")
	}
	tracker.Wait()

	assert.Equal(t, int64(2), summaryOf(t, svc).TotalVisits)
}

func TestTrackerCustomSkipPrefix(t *testing.T) {
	e, svc, tracker := newTrackedEcho(t, WithSkipPrefixes("/api/"))

	do(e, "/api/items", nil, "")
	tracker.Wait()

	assert.Zero(t, summaryOf(t, svc).APIHits)
}

func TestIsBot(t *testing.T) {
	assert.True(t, IsBot("Mozilla/5.0 (compatible; bingbot/2.0)"))
	assert.True(t, IsBot("curl-crawler"))
	assert.False(t, IsBot("Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"))
}
