package store

import (
	"fmt"

	"github.com/spf13/afero"
)

// Open returns a Store for the named backend at path. The file backend uses
// fs; the sqlite backend always uses the real filesystem.
func Open(backend, path string, fs afero.Fs) (Store, error) {
	switch backend {
	case BackendFile, "":
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("opening store: unknown backend %q (want one of %v)", backend, Backends())
	}
}
