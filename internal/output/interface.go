package output

// OutputWriter writes complete JSON documents.
type OutputWriter interface {
	// Write encodes doc and flushes it to the output.
	Write(doc any) error

	// Close closes the underlying writer and releases any resources.
	// This should be called when all writing is complete.
	Close() error
}
