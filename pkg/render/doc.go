// Package render provides the element-stream writer used to emit markup.
//
// A ResponseWriter mirrors the way server-side component frameworks write
// HTML: a start tag is opened, attributes are appended while it is still
// open, and the tag is closed implicitly by the first content write or
// explicitly by EndElement:
//
//	rw := render.NewResponseWriter(w)
//	rw.StartElement("link")
//	rw.WriteAttribute("type", "text/css")
//	rw.WriteAttribute("rel", "stylesheet")
//	rw.WriteAttribute("href", "/resources/theme.css")
//	rw.EndElement("link")
//	// Outputs: <link type="text/css" rel="stylesheet" href="/resources/theme.css">
//
// Void elements (link, meta, ...) never get an end tag. Everything else is
// closed with </name>, even when empty, so <script src="..."></script> comes
// out as browsers expect.
//
// # Streaming
//
// When the underlying writer implements http.Flusher, Flush pushes buffered
// bytes to the client. The head renderer flushes right after </head> so the
// browser can start fetching stylesheets before the body is rendered.
//
// # Security
//
// Attribute values and WriteText content are escaped. Write emits raw text
// and must only be used with trusted content such as generated scripts.
package render
