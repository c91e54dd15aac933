package dashboard

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used when no locale is configured.
var DefaultLocale = language.AmericanEnglish

// Formatter renders counts with the thousands separator of a locale.
type Formatter struct {
	tag language.Tag
	p   *message.Printer
}

// NewFormatter returns a Formatter for tag.
func NewFormatter(tag language.Tag) Formatter {
	return Formatter{tag: tag, p: message.NewPrinter(tag)}
}

// ParseFormatter builds a Formatter from a BCP 47 locale such as "en-US" or
// "de". An empty locale selects DefaultLocale.
func ParseFormatter(locale string) (Formatter, error) {
	if locale == "" {
		return NewFormatter(DefaultLocale), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return NewFormatter(tag), nil
}

// Locale returns the BCP 47 tag of the formatter.
func (f Formatter) Locale() string {
	if f.p == nil {
		return DefaultLocale.String()
	}
	return f.tag.String()
}

// Count formats n, falling back to "0" when the value is absent.
func (f Formatter) Count(n *int64) string {
	if n == nil {
		return "0"
	}
	p := f.p
	if p == nil {
		p = message.NewPrinter(DefaultLocale)
	}
	return p.Sprintf("%d", *n)
}
