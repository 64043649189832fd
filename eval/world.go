package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/solheim/marq/syntax"
)

// Config bundles the configuration eval reads from the World: the
// standard-library scope and an optional override of the recursion-depth
// guard (zero keeps the default).
type Config struct {
	Std            *Scope
	RecursionLimit int
}

// World provides eval's read-only view of the external environment: the
// file system and package resolution are both reached only through this
// interface, never directly.
type World interface {
	// Source returns the parsed source for a file id. Must be an
	// idempotent snapshot: later edits to the underlying file must not
	// be observed by a World handed to an in-flight eval call.
	Source(id syntax.FileId) (*syntax.Source, error)

	// Resolve maps a (possibly relative) path to a file id, resolving
	// relative paths against the directory of relativeTo.
	Resolve(path string, relativeTo syntax.FileId) (syntax.FileId, error)

	// Config returns host configuration, notably the standard library.
	Config() Config
}

// FileWorld is a filesystem-backed World: sources are read from disk
// lazily and cached by file id, and paths are interned through the
// syntax package's path/span machinery so repeated references to the
// same file compare by identity.
type FileWorld struct {
	root           string
	std            *Scope
	recursionLimit int

	mu      sync.RWMutex
	sources map[syntax.FileId]*syntax.Source
	paths   map[syntax.FileId]string
}

// NewFileWorld creates a World rooted at dir, with std as the
// standard-library scope visible to every eval call.
func NewFileWorld(dir string, std *Scope) *FileWorld {
	if std == nil {
		std = NewScope()
	}
	return &FileWorld{
		root:    dir,
		std:     std,
		sources: make(map[syntax.FileId]*syntax.Source),
		paths:   make(map[syntax.FileId]string),
	}
}

// MainFileId resolves and registers the world's entry point.
func (w *FileWorld) MainFileId(relPath string) (syntax.FileId, error) {
	return w.Resolve(relPath, syntax.NoFile)
}

// Path returns the filesystem path a file id was resolved from, for
// diagnostics. Reports false for an id this World never resolved.
func (w *FileWorld) Path(id syntax.FileId) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.paths[id]
	return p, ok
}

// SetRecursionLimit overrides the recursion-depth guard every Vm built
// from this World will use; zero (the default) leaves the built-in limit.
func (w *FileWorld) SetRecursionLimit(n int) {
	w.recursionLimit = n
}

// Config implements World.
func (w *FileWorld) Config() Config {
	return Config{Std: w.std, RecursionLimit: w.recursionLimit}
}

// Resolve implements World.
func (w *FileWorld) Resolve(path string, relativeTo syntax.FileId) (syntax.FileId, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		base := w.root
		if relativeTo.IsValid() {
			w.mu.RLock()
			if p, ok := w.paths[relativeTo]; ok {
				base = filepath.Dir(p)
			}
			w.mu.RUnlock()
		}
		abs = filepath.Join(base, path)
	}

	vpath, err := syntax.Virtualize(w.root, abs)
	if err != nil {
		return syntax.NoFile, fmt.Errorf("resolving %q: %w", path, err)
	}
	rooted := syntax.NewRootedPath(syntax.ProjectRoot(), *vpath)
	pathId := rooted.Intern()
	id := pathId.AsFileId()

	w.mu.Lock()
	w.paths[id] = abs
	w.mu.Unlock()
	return id, nil
}

// Source implements World, reading and parsing the file on first access
// and caching the result for the lifetime of this World value.
func (w *FileWorld) Source(id syntax.FileId) (*syntax.Source, error) {
	w.mu.RLock()
	if src, ok := w.sources[id]; ok {
		w.mu.RUnlock()
		return src, nil
	}
	path, known := w.paths[id]
	w.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("unknown file id %d", id.Raw())
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	src := syntax.NewSource(id, string(text))

	w.mu.Lock()
	w.sources[id] = src
	w.mu.Unlock()
	return src, nil
}
