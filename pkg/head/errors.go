package head

import (
	"fmt"

	herrors "github.com/vango-dev/headkit/internal/errors"
)

// ResourceKind is the kind of element a resource is emitted as.
type ResourceKind string

const (
	KindCSS ResourceKind = "css"
	KindJS  ResourceKind = "js"
)

func (k ResourceKind) label() string {
	if k == KindCSS {
		return "CSS"
	}
	return "JavaScript"
}

// ResourceNotFoundError reports a stylesheet or script the resolver does not
// know about.
type ResourceNotFoundError struct {
	Kind    ResourceKind
	Library string
	Name    string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("Error loading %s, cannot find %q resource of %q library",
		e.Kind.label(), e.Name, e.Library)
}

func resourceNotFound(kind ResourceKind, key ResourceKey) error {
	return herrors.New("H001").
		WithDetail(fmt.Sprintf("No resource %q exists in library %q.", key.Name, key.Library)).
		WithSuggestion("Check the resource manifest or the resources directory").
		Wrap(&ResourceNotFoundError{Kind: kind, Library: key.Library, Name: key.Name})
}
