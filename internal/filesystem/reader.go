package filesystem

import (
	"fmt"
	"io"
	"os"
)

// StdinPath makes ReadFile read standard input.
const StdinPath = "-"

// OSReader reads from the local filesystem
type OSReader struct {
	stdin io.Reader
}

// NewReader creates a new filesystem reader
func NewReader() *OSReader {
	return &OSReader{stdin: os.Stdin}
}

// ReadFile reads a whole file, or standard input when path is "-"
func (r *OSReader) ReadFile(path string) ([]byte, error) {
	if path == StdinPath {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
