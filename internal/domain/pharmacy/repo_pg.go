package pharmacy

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type directoryRepoPG struct{ pool *pgxpool.Pool }

func NewDirectoryRepoPG(pool *pgxpool.Pool) DirectoryRepository {
	return &directoryRepoPG{pool: pool}
}

const pharmacyCols = `id, name, lat, lon, delivery_radius_km`

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon, &p.DeliveryRadiusKm)
	return &p, err
}

func (r *directoryRepoPG) All(ctx context.Context) ([]*Pharmacy, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pharmacyCols+` FROM pharmacy ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *directoryRepoPG) Get(ctx context.Context, id string) (*Pharmacy, error) {
	return scanPharmacy(r.pool.QueryRow(ctx, `SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *directoryRepoPG) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

type inventoryRepoPG struct{ pool *pgxpool.Pool }

func NewInventoryRepoPG(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepoPG{pool: pool}
}

func (r *inventoryRepoPG) Get(ctx context.Context, pharmacyID, sku string) (*InventoryEntry, error) {
	var e InventoryEntry
	err := r.pool.QueryRow(ctx,
		`SELECT pharmacy_id, sku, qty, price FROM inventory WHERE pharmacy_id = $1 AND sku = $2`,
		pharmacyID, sku).Scan(&e.PharmacyID, &e.SKU, &e.Qty, &e.Price)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Reserve decrements the stock row with a single guarded UPDATE. The
// qty >= $3 predicate makes check and decrement one atomic statement, so
// concurrent reservations for the same key cannot lose updates or drive
// the quantity negative.
func (r *inventoryRepoPG) Reserve(ctx context.Context, pharmacyID, sku string, qty int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory SET qty = qty - $3 WHERE pharmacy_id = $1 AND sku = $2 AND qty >= $3`,
		pharmacyID, sku, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *inventoryRepoPG) ListByPharmacy(ctx context.Context, pharmacyID string, limit, offset int) ([]*InventoryEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory WHERE pharmacy_id = $1`, pharmacyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT pharmacy_id, sku, qty, price FROM inventory WHERE pharmacy_id = $1 ORDER BY sku LIMIT $2 OFFSET $3`,
		pharmacyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*InventoryEntry
	for rows.Next() {
		var e InventoryEntry
		if err := rows.Scan(&e.PharmacyID, &e.SKU, &e.Qty, &e.Price); err != nil {
			return nil, 0, err
		}
		out = append(out, &e)
	}
	return out, total, rows.Err()
}
