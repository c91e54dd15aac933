package dashboard

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ContainerID is the element id of the rendered view, used by live updates to
// swap it in place.
const ContainerID = "analytics"

// LoadingLabel is the text shown next to the spinner.
const LoadingLabel = "Loading analytics..."

// WarningIcon prefixes the error message.
const WarningIcon = "⚠️"

// Render returns the view for s as a templ component. The decision is taken
// once, so rendering the component repeatedly yields identical output.
func Render(s State, f Formatter) templ.Component {
	d := Decide(s)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeDecision(&buf, d, f)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderString renders s to an HTML string.
func RenderString(s State, f Formatter) (string, error) {
	var sb strings.Builder
	if err := Render(s, f).Render(context.Background(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeDecision(buf *bytes.Buffer, d Decision, f Formatter) {
	buf.WriteString(`<div id="` + ContainerID + `" class="analytics-container" data-state="` + d.Branch.String() + `">`)
	switch d.Branch {
	case BranchLoading:
		buf.WriteString(`<div class="analytics-loading"><div class="spinner"></div><p>`)
		buf.WriteString(LoadingLabel)
		buf.WriteString(`</p></div>`)
	case BranchError:
		buf.WriteString(`<div class="analytics-error">`)
		buf.WriteString(WarningIcon + " ")
		buf.WriteString(templ.EscapeString(d.Message))
		buf.WriteString(`</div>`)
	default:
		buf.WriteString(`<div class="analytics-grid">`)
		for _, card := range Cards(d.Data) {
			writeCard(buf, card, f)
		}
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</div>`)
}

func writeCard(buf *bytes.Buffer, c Card, f Formatter) {
	buf.WriteString(`<div class="analytics-card" data-metric="` + templ.EscapeString(c.Key) + `">`)
	buf.WriteString(`<div class="analytics-card-header">`)
	buf.WriteString(`<div class="analytics-card-icon">` + templ.EscapeString(c.Icon) + `</div>`)
	buf.WriteString(`<div class="analytics-card-label">` + templ.EscapeString(c.Label) + `</div>`)
	buf.WriteString(`</div>`)
	buf.WriteString(`<div class="analytics-card-value">` + f.Count(c.Value) + `</div>`)
	buf.WriteString(`</div>`)
}

// RenderText is the plain-text form of the same decision, for terminals.
func RenderText(s State, f Formatter) string {
	d := Decide(s)
	switch d.Branch {
	case BranchLoading:
		return LoadingLabel + "\n"
	case BranchError:
		return WarningIcon + " " + d.Message + "\n"
	}
	cards := Cards(d.Data)
	width := 0
	for _, c := range cards {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(c.Icon + " " + c.Label)
		sb.WriteString(strings.Repeat(" ", width-len(c.Label)+2))
		sb.WriteString(f.Count(c.Value))
		sb.WriteByte('\n')
	}
	return sb.String()
}
