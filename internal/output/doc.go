// Package output renders the result of a query as a single JSON document.
//
// Two layouts are supported. Compact output is what json.Marshal produces.
// Pretty output indents with four spaces. Object keys are sorted in both,
// so the two layouts parse to identical values and differ only in
// whitespace. Every document ends with a newline, and a nil slice is written
// as an empty array rather than null.
//
// Example usage:
//
//	w := output.NewWriter(os.Stdout, output.WithPretty(true))
//	if err := w.Write(proposals); err != nil {
//	    return err
//	}
//
//	// Or to a file
//	w, err := output.NewFileWriter(afero.NewOsFs(), "queue.json")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
package output
