// Package host defines the one external capability the evaluator needs
// that isn't pure computation: reading a UTF-8 source file into memory
// (spec.md §1 "Out of scope (external collaborators): ... the host
// file-reader (reads a UTF-8 file and yields its bytes)"). Keeping it
// behind an interface lets pkg/cli wire the real filesystem while tests
// substitute an in-memory map.
package host

import "os"

// FileReader reads a file's full contents, used both for `include`
// resolution (pkg/cli) and for the document builtins
// (read_json_document/read_yaml_document) that load external data at
// render time.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OS reads directly from the local filesystem.
type OS struct{}

func (OS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Map is a FileReader backed by an in-memory set of paths, grounded on
// the same fake-filesystem idiom the teacher's own tests use for
// include/config loading (internal/ext config tests construct a
// map[string]string of file contents rather than touching disk).
type Map map[string]string

func (m Map) ReadFile(path string) ([]byte, error) {
	if s, ok := m[path]; ok {
		return []byte(s), nil
	}
	return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
}
