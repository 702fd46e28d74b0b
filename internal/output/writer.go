package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/spf13/afero"
)

// indent is the pretty layout's indentation unit.
const indent = "    "

// Writer writes JSON documents to an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	pretty    bool
	closeFunc func() error
}

// Option configures a Writer.
type Option func(*Writer)

// WithPretty selects the indented layout.
func WithPretty(pretty bool) Option {
	return func(w *Writer) {
		w.pretty = pretty
	}
}

// NewWriter creates a Writer for w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	writer := &Writer{output: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// NewFileWriter creates (or truncates) filename on fs and writes to it.
// The caller must call Close() when done to ensure the file is properly closed.
func NewFileWriter(fs afero.Fs, filename string, opts ...Option) (*Writer, error) {
	file, err := fs.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer := NewWriter(file, opts...)
	writer.closeFunc = file.Close
	return writer, nil
}

// Write encodes doc followed by a newline.
func (w *Writer) Write(doc any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	encoder := json.NewEncoder(w.output)
	encoder.SetEscapeHTML(false)
	if w.pretty {
		encoder.SetIndent("", indent)
	}

	if err := encoder.Encode(normalizeNilSlice(doc)); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Close closes the underlying writer if it's a file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		closeFunc := w.closeFunc
		w.closeFunc = nil
		return closeFunc()
	}
	return nil
}

// normalizeNilSlice turns a nil slice into an empty one of the same type so
// it encodes as [] instead of null.
func normalizeNilSlice(v any) any {
	if v == nil {
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return reflect.MakeSlice(rv.Type(), 0, 0).Interface()
	}
	return v
}
