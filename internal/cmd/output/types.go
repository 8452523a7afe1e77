package output

import "io"

// Handler renders command results in one output format.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler writes to.
	Writer() io.Writer

	// HandleResult renders a single item.
	HandleResult(item T) error

	// HandleResults renders a collection of items.
	HandleResults(items ...T) error

	// HandleError renders the error.
	HandleError(err error) error
}

// Printer renders items of type T as plain text. Implementations live in the
// printer package, one per listed type.
type Printer[T any] interface {
	// Header is written once before the items.
	Header(w io.Writer, count int)

	// Item prints one element.
	Item(w io.Writer, elem T) error

	// Footer is written once after the items.
	Footer(w io.Writer, count int)
}

// ResultsPayload wraps multiple result values under a "results" key.
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ResultPayload wraps a single result value under a "result" key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload wraps an error message under an "error" key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
