package convert

import (
	"fmt"
	"io"
	"os"
)

// WriteError is returned when the output cannot be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteOutput creates or overwrites path with data. An empty path writes to
// stdout instead.
func WriteOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return &WriteError{Path: "<stdout>", Err: err}
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
