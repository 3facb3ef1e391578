// Package fileinput gives the CLI a named byte buffer to hand to the
// lexer, so diagnostics always have a real path to print.
package fileinput

import (
	"fmt"
	"io"
	"os"
)

// Source is a fully-read input file: its name (for diagnostics) and its
// complete contents. The lexer consumes Data as a single owned buffer, so
// there's no streaming reader here, unlike a line-oriented input source.
type Source struct {
	Name string
	Data []byte
}

// ReadFile reads path in full into a Source.
func ReadFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Source{Name: path, Data: data}, nil
}

// Read drains r in full into a Source named name, for callers (tests,
// piping from stdin) that don't have a real file on disk.
func Read(name string, r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return Source{Name: name, Data: data}, nil
}
