package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, s State) string {
	t.Helper()
	html, err := RenderString(s, NewFormatter(DefaultLocale))
	require.NoError(t, err)
	return html
}

func TestRenderDashboard(t *testing.T) {
	html := render(t, State{Snapshot: successPayload()})

	assert.Contains(t, html, `data-state="dashboard"`)
	assert.Contains(t, html, `<div class="analytics-card-value">250</div>`)
	assert.Contains(t, html, `<div class="analytics-card-value">1,000</div>`)
	assert.Contains(t, html, "Unique Users")
	assert.Contains(t, html, "Total Visits")
	assert.NotContains(t, html, LoadingLabel)
	assert.NotContains(t, html, "analytics-error")
	assert.Less(t, strings.Index(html, "Unique Users"), strings.Index(html, "Total Visits"))
}

func TestRenderErrorView(t *testing.T) {
	html := render(t, State{Err: strPtr("network down")})

	assert.Contains(t, html, `<div class="analytics-error">⚠️ network down</div>`)
	assert.NotContains(t, html, "analytics-grid")
}

func TestRenderFallbackErrorMessage(t *testing.T) {
	s := initialState().fail(&FetchError{})
	assert.Contains(t, render(t, s), FallbackErrorMessage)
}

func TestRenderEscapesErrorMessage(t *testing.T) {
	html := render(t, State{Err: strPtr("<script>x</script>")})
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderMissingEndpointStats(t *testing.T) {
	snap := &Snapshot{TotalVisits: Count(1), UniqueUsers: Count(1), APIHits: Count(1)}
	html := render(t, State{Snapshot: snap})
	assert.Contains(t, html, `data-state="dashboard"`)
}

func TestRenderAbsentValuesShowZero(t *testing.T) {
	html := render(t, State{Snapshot: &Snapshot{}})
	assert.Equal(t, 2, strings.Count(html, `<div class="analytics-card-value">0</div>`))
}

func TestRenderIsIdempotent(t *testing.T) {
	s := State{Snapshot: successPayload(), Err: strPtr("stale")}
	cmp := Render(s, NewFormatter(DefaultLocale))

	var a, b strings.Builder
	require.NoError(t, cmp.Render(context.Background(), &a))
	require.NoError(t, cmp.Render(context.Background(), &b))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.String(), render(t, s))
}

func TestRenderText(t *testing.T) {
	f := NewFormatter(DefaultLocale)

	assert.Equal(t, LoadingLabel+"\n", RenderText(State{Loading: true}, f))
	assert.Equal(t, "⚠️ network down\n", RenderText(State{Err: strPtr("network down")}, f))

	out := RenderText(State{Snapshot: successPayload()}, f)
	assert.Equal(t, "👥 Unique Users  250\n🌐 Total Visits  1,000\n", out)
}

func TestCardFieldsAreEscaped(t *testing.T) {
	var buf bytes.Buffer
	writeCard(&buf, Card{Key: `x" onclick="y`, Icon: "<b>", Label: "A&B", Value: Count(3)}, NewFormatter(DefaultLocale))
	html := buf.String()

	assert.Contains(t, html, `data-metric="x&#34; onclick=&#34;y"`)
	assert.Contains(t, html, `<div class="analytics-card-icon">&lt;b&gt;</div>`)
	assert.Contains(t, html, `A&amp;B`)
	assert.NotContains(t, html, "<b>")
}
