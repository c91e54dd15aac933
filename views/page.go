// Package views holds the page shell and error pages around the dashboard.
package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// RefreshPath is the endpoint the refresh button posts to.
const RefreshPath = "/fragments/analytics/refresh"

// Page wraps body in the full HTML document.
func Page(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeHead(&buf, meta)

		buf.WriteString(`<body><main class="page"><header class="page-header"><h1>`)
		text(&buf, meta.Title)
		buf.WriteString(`</h1>`)
		buf.WriteString(`<button type="button" class="refresh" data-refresh`)
		attr(&buf, "data-url", RefreshPath)
		buf.WriteString(`>Refresh</button></header>`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		buf.Reset()

		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}

		buf.WriteString(`</main><script`)
		attr(&buf, "src", assetURL("live.js"))
		buf.WriteString(` defer></script></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, meta PageMeta) {
	l := meta.Lang
	if l == "" {
		l = "en"
	}
	buf.WriteString(`<!DOCTYPE html><html`)
	attr(buf, "lang", lang(l))
	buf.WriteString(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
	text(buf, meta.Title)
	buf.WriteString(`</title><meta name="csrf-token"`)
	attr(buf, "content", meta.CSRFToken)
	buf.WriteString(`><meta name="live-url"`)
	attr(buf, "content", meta.LiveURL)
	buf.WriteString(`><link rel="stylesheet"`)
	attr(buf, "href", assetURL("dashboard.css"))
	buf.WriteString(`></head>`)
}

// Message renders a centered notice, used by the error pages.
func Message(icon, title, detail string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="notice"><div class="notice-icon">`)
		text(&buf, icon)
		buf.WriteString(`</div><h2>`)
		text(&buf, title)
		buf.WriteString(`</h2><p>`)
		text(&buf, detail)
		buf.WriteString(`</p><a href="/">Back to the dashboard</a></div>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// NotFound is the 404 page.
func NotFound() templ.Component {
	return Page(PageMeta{Title: "Not found"}, Message("🔍", "Page not found", "There is nothing at this address."))
}

// ServerError is the 5xx page.
func ServerError() templ.Component {
	return Page(PageMeta{Title: "Server error"}, Message("⚠️", "Something went wrong", "The server could not complete the request."))
}
