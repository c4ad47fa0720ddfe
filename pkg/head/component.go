package head

// Component writes markup into the head.
type Component interface {
	Encode(ctx *Context) error
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(ctx *Context) error

// Encode calls f(ctx).
func (f ComponentFunc) Encode(ctx *Context) error {
	return f(ctx)
}

// Conditional is implemented by components that may be switched off.
type Conditional interface {
	IsRendered() bool
}

func shouldRender(c Component) bool {
	if c == nil {
		return false
	}
	if cond, ok := c.(Conditional); ok {
		return cond.IsRendered()
	}
	return true
}

func encodeComponent(ctx *Context, c Component) error {
	if !shouldRender(c) {
		return nil
	}
	return c.Encode(ctx)
}

// Stylesheet returns a component emitting a deduplicated stylesheet link.
func Stylesheet(library, name string) Component {
	return ComponentFunc(func(ctx *Context) error {
		return ctx.EncodeCSS(library, name)
	})
}

// Script returns a component emitting a deduplicated script element.
func Script(library, name string) Component {
	return ComponentFunc(func(ctx *Context) error {
		return ctx.EncodeJS(library, name)
	})
}

// Raw returns a component writing markup as is.
func Raw(markup string) Component {
	return ComponentFunc(func(ctx *Context) error {
		return ctx.Writer().Write(markup)
	})
}

// InlineScript returns a component writing body inside a script element.
func InlineScript(body string) Component {
	return ComponentFunc(func(ctx *Context) error {
		return writeScript(ctx, body)
	})
}

// Group encodes components in order, skipping those not rendered.
func Group(components ...Component) Component {
	return ComponentFunc(func(ctx *Context) error {
		for _, c := range components {
			if err := encodeComponent(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// When returns a component that renders c only if rendered is true.
func When(rendered bool, c Component) Component {
	return conditional{Component: c, rendered: rendered}
}

type conditional struct {
	Component
	rendered bool
}

func (c conditional) IsRendered() bool {
	return c.rendered && c.Component != nil
}

// Head describes the head element being rendered.
type Head struct {
	// ID is written as the id attribute when not empty.
	ID string

	// First is written right after the opening tag.
	First Component

	// Middle is written after the theme and icon stylesheets.
	Middle Component

	// Last is written by EncodeEnd, after everything else.
	Last Component
}
