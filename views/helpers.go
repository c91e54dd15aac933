package views

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/a-h/templ"
)

// AssetsPath is where the embedded stylesheet and script are served.
const AssetsPath = "/public/"

// assetURL joins name onto AssetsPath.
func assetURL(name string) string {
	u := url.URL{Path: path.Join(AssetsPath, name)}
	return u.String()
}

// attr writes name="value" with value escaped, preceded by a space.
func attr(buf *bytes.Buffer, name, value string) {
	buf.WriteString(" " + name + `="`)
	buf.WriteString(templ.EscapeString(value))
	buf.WriteByte('"')
}

// text writes s escaped.
func text(buf *bytes.Buffer, s string) {
	buf.WriteString(templ.EscapeString(s))
}

// lang returns the primary language subtag of a locale, "en" if none.
func lang(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "en"
	}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return strings.ToLower(locale[:i])
	}
	return strings.ToLower(locale)
}
