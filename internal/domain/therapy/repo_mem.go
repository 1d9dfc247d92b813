package therapy

import (
	"context"
	"fmt"
	"sync"
)

// formularyRepoMem is an in-memory FormularyRepository seeded at startup.
type formularyRepoMem struct {
	mu      sync.RWMutex
	entries []*FormularyEntry
	bySKU   map[string]*FormularyEntry
}

func NewFormularyRepoMem(entries []*FormularyEntry) FormularyRepository {
	bySKU := make(map[string]*FormularyEntry, len(entries))
	for _, e := range entries {
		bySKU[e.SKU] = e
	}
	return &formularyRepoMem{entries: entries, bySKU: bySKU}
}

func (r *formularyRepoMem) All(ctx context.Context) ([]*FormularyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*FormularyEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *formularyRepoMem) GetBySKU(ctx context.Context, sku string) (*FormularyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.bySKU[sku]
	if !ok {
		return nil, fmt.Errorf("formulary entry %s not found", sku)
	}
	return e, nil
}

func (r *formularyRepoMem) List(ctx context.Context, limit, offset int) ([]*FormularyEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := len(r.entries)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return r.entries[offset:end], total, nil
}
