package eval

import (
	"fmt"

	"github.com/solheim/marq/syntax"
)

// memWorld is a tiny in-memory World used across eval's tests. Sources
// are named rather than filesystem-backed, since the tests only care
// about import/include/cycle behavior, not real path resolution.
type memWorld struct {
	std     *Scope
	sources map[syntax.FileId]*syntax.Source
	byName  map[string]syntax.FileId
}

func newMemWorld(std *Scope) *memWorld {
	if std == nil {
		std = NewScope()
	}
	return &memWorld{
		std:     std,
		sources: make(map[syntax.FileId]*syntax.Source),
		byName:  make(map[string]syntax.FileId),
	}
}

// add registers a named source and returns its file id.
func (w *memWorld) add(name, text string) syntax.FileId {
	src := syntax.NewDetachedSource(text)
	id := src.Id()
	w.sources[id] = src
	w.byName[name] = id
	return id
}

func (w *memWorld) Source(id syntax.FileId) (*syntax.Source, error) {
	src, ok := w.sources[id]
	if !ok {
		return nil, fmt.Errorf("unknown file id %d", id.Raw())
	}
	return src, nil
}

func (w *memWorld) Resolve(path string, _ syntax.FileId) (syntax.FileId, error) {
	id, ok := w.byName[path]
	if !ok {
		return syntax.NoFile, fmt.Errorf("unknown source %q", path)
	}
	return id, nil
}

func (w *memWorld) Config() Config {
	return Config{Std: w.std}
}

// evalSource is a one-shot convenience: register text as the sole named
// source "main" and evaluate it from an empty route.
func evalSource(text string) (*Module, error) {
	w := newMemWorld(nil)
	id := w.add("main", text)
	return Eval(w, NewRoute(), id)
}
