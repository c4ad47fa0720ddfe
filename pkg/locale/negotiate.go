package locale

import (
	"net/http"

	"golang.org/x/text/language"
)

// DefaultCookieName is the cookie consulted for an explicit locale choice.
const DefaultCookieName = "locale"

// DefaultQueryParam is the query parameter consulted for an explicit locale
// choice.
const DefaultQueryParam = "locale"

// Negotiator picks the best supported locale for a request. An explicit
// choice in the query string or cookie wins over Accept-Language.
type Negotiator struct {
	supported []language.Tag
	matcher   language.Matcher

	// CookieName is the cookie holding an explicit choice. Empty disables it.
	CookieName string

	// QueryParam is the query parameter holding an explicit choice. Empty
	// disables it.
	QueryParam string
}

// NewNegotiator creates a Negotiator. The first supported tag is the
// fallback when nothing in the request matches.
func NewNegotiator(supported ...language.Tag) *Negotiator {
	n := &Negotiator{
		supported:  supported,
		CookieName: DefaultCookieName,
		QueryParam: DefaultQueryParam,
	}
	if len(supported) > 0 {
		n.matcher = language.NewMatcher(supported)
	}
	return n
}

// ParseTags parses BCP 47 tags, accepting the underscore form as well.
func ParseTags(values ...string) ([]language.Tag, error) {
	tags := make([]language.Tag, 0, len(values))
	for _, v := range values {
		tag, err := language.Parse(v)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Supported returns the configured tags.
func (n *Negotiator) Supported() []language.Tag {
	return n.supported
}

// Locale implements Provider.
func (n *Negotiator) Locale(r *http.Request) (language.Tag, error) {
	if n.matcher == nil {
		return language.Und, ErrNoLocale
	}
	if r == nil {
		return n.supported[0], nil
	}

	var prefs []language.Tag
	if n.QueryParam != "" {
		if v := r.URL.Query().Get(n.QueryParam); v != "" {
			if tag, err := language.Parse(v); err == nil {
				prefs = append(prefs, tag)
			}
		}
	}
	if n.CookieName != "" {
		if c, err := r.Cookie(n.CookieName); err == nil && c.Value != "" {
			if tag, err := language.Parse(c.Value); err == nil {
				prefs = append(prefs, tag)
			}
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			prefs = append(prefs, tags...)
		}
	}

	_, index, _ := n.matcher.Match(prefs...)
	return n.supported[index], nil
}
