package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Format selects how CLI results are rendered.
type Format string

// Handler renders a collection of results, or an error, to a writer.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler will write to.
	Writer() io.Writer

	// HandleResults renders a collection of results.
	HandleResults(items ...T) error

	// HandleError renders the error.
	HandleError(err error) error
}

// ItemFunc writes the plain-text rendering of a single item.
type ItemFunc[T any] func(w io.Writer, item T) error

// ResultsPayload wraps multiple result values for structured formats.
// The payload is serialized with the key "results".
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ErrorPayload wraps an error message for structured formats.
// The payload is serialized with the key "error".
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}

// NewHandler returns the Handler for the requested format.
// The item function is only consulted for text output.
func NewHandler[T any](format Format, w io.Writer, item ItemFunc[T]) (Handler[T], error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatText:
		return &TextHandler[T]{out: w, item: item}, nil
	case FormatJSON:
		return &JSONHandler[T]{out: w, indent: "  "}, nil
	case FormatYAML:
		return &YAMLHandler[T]{out: w, indent: 2}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// TextHandler writes human-readable rows using the configured item function.
type TextHandler[T any] struct {
	out  io.Writer
	item ItemFunc[T]
}

func (h *TextHandler[T]) Writer() io.Writer {
	return h.out
}

func (h *TextHandler[T]) HandleResults(items ...T) error {
	if len(items) == 0 {
		_, _ = io.WriteString(h.out, "No items found\n")
		return nil
	}

	for _, it := range items {
		if err := h.item(h.out, it); err != nil {
			return err
		}
	}

	return nil
}

func (h *TextHandler[T]) HandleError(err error) error {
	return err
}

// JSONHandler writes JSON for both data and errors, honoring struct tags.
type JSONHandler[T any] struct {
	out    io.Writer
	indent string
}

func (h *JSONHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResults marshals the given items under a "results" key to JSON.
func (h *JSONHandler[T]) HandleResults(items ...T) error {
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", h.indent)
	return enc.Encode(ResultsPayload[T]{Results: items})
}

// HandleError marshals the given error string under an "error" key to JSON.
func (h *JSONHandler[T]) HandleError(err error) error {
	enc := json.NewEncoder(h.out)
	enc.SetIndent("", h.indent)
	return enc.Encode(ErrorPayload{Error: err.Error()})
}

// YAMLHandler writes YAML for both data and errors, honoring struct tags.
type YAMLHandler[T any] struct {
	out    io.Writer
	indent int
}

func (h *YAMLHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResults marshals the given items under a "results" key to YAML.
func (h *YAMLHandler[T]) HandleResults(items ...T) error {
	enc := yaml.NewEncoder(h.out)
	defer func(enc *yaml.Encoder) {
		// Ensure encoder is closed to flush any buffered data.
		_ = enc.Close()
	}(enc)
	enc.SetIndent(h.indent)
	return enc.Encode(ResultsPayload[T]{Results: items})
}

// HandleError marshals the given error string under an "error" key to YAML.
func (h *YAMLHandler[T]) HandleError(err error) error {
	enc := yaml.NewEncoder(h.out)
	defer func(enc *yaml.Encoder) {
		_ = enc.Close()
	}(enc)
	enc.SetIndent(h.indent)
	return enc.Encode(ErrorPayload{Error: err.Error()})
}
