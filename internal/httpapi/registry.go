package httpapi

import (
	"errors"
	"sync"

	"github.com/gosheetlab/sheetcore/internal/sheet"
)

var ErrSheetNotFound = errors.New("sheet not found")

// entry pairs a Sheet with the exclusive lock its single-threaded core
// needs once it's reachable from concurrent HTTP handlers: every access is
// serialized here.
type entry struct {
	mu    sync.Mutex
	sheet *sheet.Sheet
}

// Registry owns one Sheet per sheet id, created lazily on first write.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// WithExisting runs fn against id's sheet, or returns ErrSheetNotFound if
// id has never been written to. Does not create an entry.
func (r *Registry) WithExisting(id string, fn func(*sheet.Sheet) error) error {
	e := r.lookup(id)
	if e == nil {
		return ErrSheetNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sheet)
}

// WithOrCreate runs fn against id's sheet, creating it first if needed.
func (r *Registry) WithOrCreate(id string, fn func(*sheet.Sheet) error) error {
	e := r.getOrCreate(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sheet)
}

func (r *Registry) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

func (r *Registry) getOrCreate(id string) *entry {
	if e := r.lookup(id); e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e
	}

	e := &entry{sheet: sheet.New()}
	r.entries[id] = e
	return e
}
