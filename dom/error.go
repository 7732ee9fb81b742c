package dom

import "github.com/ardnew/hypereval/lang"

var (
	// ErrInvalidSelector is returned when a selector cannot be compiled.
	ErrInvalidSelector = lang.NewError("invalid selector")

	// ErrNotElement is returned when an element was required but some
	// other value was given.
	ErrNotElement = lang.NewError("value is not an element")

	// ErrParseDocument is returned when the document cannot be parsed.
	ErrParseDocument = lang.NewError("failed to parse HTML document")
)
