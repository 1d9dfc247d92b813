package pharmacy

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// directoryRepoMem is an in-memory DirectoryRepository seeded at startup.
type directoryRepoMem struct {
	pharmacies []*Pharmacy
	byID       map[string]*Pharmacy
}

func NewDirectoryRepoMem(pharmacies []*Pharmacy) DirectoryRepository {
	byID := make(map[string]*Pharmacy, len(pharmacies))
	for _, p := range pharmacies {
		byID[p.ID] = p
	}
	return &directoryRepoMem{pharmacies: pharmacies, byID: byID}
}

func (r *directoryRepoMem) All(ctx context.Context) ([]*Pharmacy, error) {
	out := make([]*Pharmacy, len(r.pharmacies))
	copy(out, r.pharmacies)
	return out, nil
}

func (r *directoryRepoMem) Get(ctx context.Context, id string) (*Pharmacy, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("pharmacy %s not found", id)
	}
	return p, nil
}

func (r *directoryRepoMem) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	total := len(r.pharmacies)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return r.pharmacies[offset:end], total, nil
}

type invKey struct {
	pharmacyID string
	sku        string
}

// inventoryRepoMem keeps stock in memory. The key set is fixed after
// seeding, so lookups need no lock; quantities are guarded by one mutex
// per (pharmacy, sku) key, which serializes Reserve exactly as the
// invariant requires while keeping unrelated keys independent.
type inventoryRepoMem struct {
	entries map[invKey]*InventoryEntry
	locks   map[invKey]*sync.Mutex
}

func NewInventoryRepoMem(entries []*InventoryEntry) InventoryRepository {
	r := &inventoryRepoMem{
		entries: make(map[invKey]*InventoryEntry, len(entries)),
		locks:   make(map[invKey]*sync.Mutex, len(entries)),
	}
	for _, e := range entries {
		k := invKey{e.PharmacyID, e.SKU}
		r.entries[k] = e
		r.locks[k] = &sync.Mutex{}
	}
	return r
}

func (r *inventoryRepoMem) Get(ctx context.Context, pharmacyID, sku string) (*InventoryEntry, error) {
	k := invKey{pharmacyID, sku}
	e, ok := r.entries[k]
	if !ok {
		return nil, fmt.Errorf("no inventory for %s at %s", sku, pharmacyID)
	}

	r.locks[k].Lock()
	defer r.locks[k].Unlock()
	snapshot := *e
	return &snapshot, nil
}

func (r *inventoryRepoMem) Reserve(ctx context.Context, pharmacyID, sku string, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("reserve qty must be positive, got %d", qty)
	}
	k := invKey{pharmacyID, sku}
	e, ok := r.entries[k]
	if !ok {
		return false, nil
	}

	r.locks[k].Lock()
	defer r.locks[k].Unlock()
	if e.Qty < qty {
		return false, nil
	}
	e.Qty -= qty
	return true, nil
}

func (r *inventoryRepoMem) ListByPharmacy(ctx context.Context, pharmacyID string, limit, offset int) ([]*InventoryEntry, int, error) {
	var all []*InventoryEntry
	for k, e := range r.entries {
		if k.pharmacyID != pharmacyID {
			continue
		}
		r.locks[k].Lock()
		snapshot := *e
		r.locks[k].Unlock()
		all = append(all, &snapshot)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
