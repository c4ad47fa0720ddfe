// Package locale determines the locale of the current request.
//
// The head renderer needs the locale twice: its string form is written into
// the client settings object, and its base language selects the client side
// translation script (locales/locale-<lang>.js).
package locale

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// ErrNoLocale is returned when no locale can be determined.
var ErrNoLocale = errors.New("locale: no locale available for request")

// Provider returns the locale of a request.
type Provider interface {
	Locale(r *http.Request) (language.Tag, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(r *http.Request) (language.Tag, error)

// Locale calls f(r).
func (f ProviderFunc) Locale(r *http.Request) (language.Tag, error) {
	return f(r)
}

// Fixed returns a Provider that always answers tag.
func Fixed(tag language.Tag) Provider {
	return ProviderFunc(func(*http.Request) (language.Tag, error) {
		return tag, nil
	})
}

// String renders tag in the underscore form used by the client runtime,
// e.g. "en_US" or "pt_BR".
func String(tag language.Tag) string {
	return strings.ReplaceAll(tag.String(), "-", "_")
}

// Language returns the base language code of tag, e.g. "en" for en-US.
func Language(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
