// Package head renders the <head> element of a page.
//
// A Renderer is built once per application from an immutable Config and is
// shared by all requests. Each render gets its own Context, which owns the
// per-request state: the set of resources already emitted, the queue of
// initialization scripts and the resources other components registered for
// the head.
//
// EncodeBegin writes the opening tag followed by, in order:
//
//	first facet
//	theme stylesheet
//	icon stylesheet
//	middle facet
//	registered head resources
//	client side validation scripts
//	client side locale script
//	settings script
//	initialization script
//
// EncodeEnd writes the last facet and closes the element. Any failure other
// than a missing locale script aborts the render and leaves the markup
// already written in place.
package head
