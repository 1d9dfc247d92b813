package pharmacy

import "context"

// DirectoryRepository provides read access to the pharmacy directory.
type DirectoryRepository interface {
	All(ctx context.Context) ([]*Pharmacy, error)
	Get(ctx context.Context, id string) (*Pharmacy, error)
	List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error)
}

// InventoryRepository provides access to the stock table. Reserve is the
// only mutating operation in the whole pipeline and must be serialized per
// (pharmacyID, sku) key: a successful reserve decrements the quantity
// atomically, a failed one leaves the row untouched.
type InventoryRepository interface {
	Get(ctx context.Context, pharmacyID, sku string) (*InventoryEntry, error)
	Reserve(ctx context.Context, pharmacyID, sku string, qty int) (bool, error)
	ListByPharmacy(ctx context.Context, pharmacyID string, limit, offset int) ([]*InventoryEntry, int, error)
}
