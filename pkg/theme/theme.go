// Package theme maps a configured theme to its stylesheet resource.
//
// The configured value is either a literal theme name ("saga", "arya-green")
// or an expression evaluated per request ("#{cookie.theme ?? 'vela'}").
// Legacy short names are mapped to their canonical theme, an unset or empty
// value selects the default theme, and "none" disables the theme stylesheet.
package theme

import (
	"fmt"
	"strings"
)

const (
	// Library is the resource library holding all theme stylesheets.
	Library = "primefaces"

	// Default is the theme used when none is configured.
	Default = "saga-blue"

	// None disables the theme stylesheet.
	None = "none"

	stylesheet = "theme.css"
)

type alias struct {
	from, to string
}

// aliases maps legacy short theme names to canonical ones.
var aliases = []alias{
	{"saga", "saga-blue"},
	{"arya", "arya-blue"},
	{"vela", "vela-blue"},
}

// Canonical returns the canonical theme name for name.
func Canonical(name string) string {
	for _, a := range aliases {
		if a.from == name {
			return a.to
		}
	}
	return name
}

// Resource identifies a theme stylesheet.
type Resource struct {
	Library string
	Name    string
}

// ForTheme returns the stylesheet resource of a canonical theme name.
func ForTheme(name string) Resource {
	return Resource{
		Library: Library,
		Name:    Library + "-" + name + "/" + stylesheet,
	}
}

// Env is the evaluation environment of theme expressions.
type Env map[string]any

// Resolver turns the configured theme into a stylesheet resource.
type Resolver struct {
	evaluator Evaluator
}

// NewResolver creates a Resolver. A nil evaluator uses an ExprEvaluator.
func NewResolver(evaluator Evaluator) *Resolver {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	return &Resolver{evaluator: evaluator}
}

// Resolve returns the theme stylesheet for the configured value, or nil when
// the theme is disabled. Evaluation failures are returned as
// *EvaluationError.
func (r *Resolver) Resolve(configured string, env Env) (*Resource, error) {
	name := Default
	if configured != "" {
		value, err := r.evaluate(configured, env)
		if err != nil {
			return nil, err
		}
		if value != "" {
			name = value
		}
	}

	if name == None {
		return nil, nil
	}

	res := ForTheme(Canonical(name))
	return &res, nil
}

func (r *Resolver) evaluate(configured string, env Env) (string, error) {
	expression, ok := Expression(configured)
	if !ok {
		return strings.TrimSpace(configured), nil
	}

	value, err := r.evaluator.Evaluate(expression, env)
	if err != nil {
		return "", wrapEvaluationError(expression, err)
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", &EvaluationError{
			Expr: expression,
			Err:  fmt.Errorf("theme expression returned %T, want string", value),
		}
	}
}

// Expression extracts the body of a "#{...}" or "${...}" value.
func Expression(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if len(v) < 3 || !strings.HasSuffix(v, "}") {
		return "", false
	}
	if !strings.HasPrefix(v, "#{") && !strings.HasPrefix(v, "${") {
		return "", false
	}
	return strings.TrimSpace(v[2 : len(v)-1]), true
}
