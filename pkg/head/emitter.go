package head

import "github.com/vango-dev/headkit/pkg/render"

// EncodeCSS writes a stylesheet link for library/name unless it was already
// written. A resource unknown to the resolver is an H001 error wrapping
// *ResourceNotFoundError.
func (c *Context) EncodeCSS(library, name string) error {
	return c.encodeResource(KindCSS, library, name)
}

// EncodeJS writes a script element for library/name unless it was already
// written.
func (c *Context) EncodeJS(library, name string) error {
	return c.encodeResource(KindJS, library, name)
}

func (c *Context) encodeResource(kind ResourceKind, library, name string) error {
	key := ResourceKey{Library: library, Name: name}
	if c.ResourceEmitted(library, name) {
		c.observeResource(kind, key, OutcomeDuplicate, "")
		return nil
	}

	path, ok := c.renderer.resolver.Resolve(library, name)
	if !ok {
		c.observeResource(kind, key, OutcomeMissing, "")
		return resourceNotFound(kind, key)
	}

	url := c.EncodeResourceURL(path)
	var err error
	if kind == KindCSS {
		err = writeElement(c.w, "link", "type", "text/css", "rel", "stylesheet", "href", url)
	} else {
		err = writeElement(c.w, "script", "src", url)
	}
	if err != nil {
		return err
	}

	c.emitted.Mark(key)
	c.observeResource(kind, key, OutcomeEmitted, url)
	return nil
}

func (c *Context) observeResource(kind ResourceKind, key ResourceKey, outcome ResourceOutcome, url string) {
	c.renderer.observer.ResourceEncoded(c.std, ResourceEvent{
		Kind:    kind,
		Key:     key,
		Outcome: outcome,
		URL:     url,
	})
}

// writeElement writes an element without content. attrs alternates names
// and values.
func writeElement(w *render.ResponseWriter, name string, attrs ...string) error {
	if err := w.StartElement(name); err != nil {
		return err
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if err := w.WriteAttribute(attrs[i], attrs[i+1]); err != nil {
			return err
		}
	}
	return w.EndElement(name)
}

func writeScript(c *Context, body string) error {
	w := c.w
	if err := w.StartElement("script"); err != nil {
		return err
	}
	if err := w.Write(body); err != nil {
		return err
	}
	return w.EndElement("script")
}
