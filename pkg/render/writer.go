package render

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNoOpenElement is returned by WriteAttribute when no start tag is open.
var ErrNoOpenElement = errors.New("render: attribute written outside of a start tag")

// ResponseWriter writes markup as a stream of elements, attributes and text.
// It is not safe for concurrent use; one writer belongs to one response.
type ResponseWriter struct {
	w       io.Writer
	flusher http.Flusher

	// stack holds the names of open elements, innermost last.
	stack []string

	// startOpen reports whether the innermost start tag still lacks its '>'.
	startOpen bool

	// err is the first write error; every later call returns it.
	err error
}

// NewResponseWriter creates a ResponseWriter writing to w. If w implements
// http.Flusher, Flush forwards to it.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	flusher, _ := w.(http.Flusher)
	return &ResponseWriter{
		w:       w,
		flusher: flusher,
	}
}

// StartElement opens a start tag. Attributes may follow until the next
// content write or EndElement.
func (rw *ResponseWriter) StartElement(name string) error {
	if err := rw.closeStart(); err != nil {
		return err
	}
	if err := rw.writeString("<" + name); err != nil {
		return err
	}
	rw.stack = append(rw.stack, name)
	rw.startOpen = true
	return nil
}

// WriteAttribute appends an attribute to the open start tag.
func (rw *ResponseWriter) WriteAttribute(name, value string) error {
	if rw.err != nil {
		return rw.err
	}
	if !rw.startOpen {
		return fmt.Errorf("%w: %s", ErrNoOpenElement, name)
	}
	return rw.writeString(" " + name + `="` + escapeAttr(value) + `"`)
}

// Write writes raw text. The content is not escaped.
func (rw *ResponseWriter) Write(text string) error {
	if err := rw.closeStart(); err != nil {
		return err
	}
	return rw.writeString(text)
}

// WriteText writes escaped text content.
func (rw *ResponseWriter) WriteText(text string) error {
	return rw.Write(escapeHTML(text))
}

// EndElement closes the innermost element, which must be name.
func (rw *ResponseWriter) EndElement(name string) error {
	if rw.err != nil {
		return rw.err
	}
	n := len(rw.stack)
	if n == 0 || rw.stack[n-1] != name {
		return fmt.Errorf("render: EndElement(%q) does not match open element %q", name, rw.current())
	}
	rw.stack = rw.stack[:n-1]

	if rw.startOpen {
		rw.startOpen = false
		if err := rw.writeString(">"); err != nil {
			return err
		}
	}
	if IsVoidElement(name) {
		return nil
	}
	return rw.writeString("</" + name + ">")
}

// Flush pushes buffered output to the client when the underlying writer
// supports it.
func (rw *ResponseWriter) Flush() {
	if rw.flusher != nil && rw.err == nil {
		rw.flusher.Flush()
	}
}

// Depth returns the number of open elements.
func (rw *ResponseWriter) Depth() int {
	return len(rw.stack)
}

// Err returns the first write error, if any.
func (rw *ResponseWriter) Err() error {
	return rw.err
}

func (rw *ResponseWriter) current() string {
	if len(rw.stack) == 0 {
		return ""
	}
	return rw.stack[len(rw.stack)-1]
}

func (rw *ResponseWriter) closeStart() error {
	if rw.err != nil {
		return rw.err
	}
	if !rw.startOpen {
		return nil
	}
	rw.startOpen = false
	return rw.writeString(">")
}

func (rw *ResponseWriter) writeString(s string) error {
	if rw.err != nil {
		return rw.err
	}
	if _, err := io.WriteString(rw.w, s); err != nil {
		rw.err = err
		return err
	}
	return nil
}
