// Package errors provides structured, actionable error messages for headkit.
//
// Every failure the head renderer can surface has a registered code that maps
// to a category, a short message, a longer explanation and a documentation
// link. Callers build errors from a code and attach what they know:
//
//	err := errors.New("H001").
//	    WithDetail(`cannot find "theme.css" resource of "primefaces-saga-blue" library`).
//	    Wrap(notFound)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR H001: Resource not found
//	//
//	//   cannot find "theme.css" resource of "primefaces-saga-blue" library
//	//
//	//   Learn more: https://headkit.dev/docs/errors/H001
//
// # Error Categories
//
//   - resource: a named stylesheet or script could not be resolved
//   - expression: a configured expression failed to evaluate
//   - locale: the current locale or its client script is unavailable
//   - config: the project configuration is missing or invalid
//   - render: writing markup to the response failed
//   - cli: command line usage errors
//
// The wrapped cause stays reachable through errors.Is and errors.As.
package errors
