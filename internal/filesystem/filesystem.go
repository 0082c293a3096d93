// Package filesystem reads operator input files and writes command artifacts.
package filesystem

type (
	Reader interface {
		ReadFile(path string) ([]byte, error)
	}
	Writer interface {
		WriteJSON(path string, data any) error
		WriteBytes(path string, data []byte) error
	}
)
