package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
)

// SeedPG upserts reference data into Postgres. Existing rows are replaced so
// seeding is idempotent and resets stock levels.
func SeedPG(ctx context.Context, pool *pgxpool.Pool, pharmacies []*pharmacy.Pharmacy, inventory []*pharmacy.InventoryEntry, formulary []*therapy.FormularyEntry) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range pharmacies {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pharmacy (id, name, lat, lon, delivery_radius_km)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
				delivery_radius_km = EXCLUDED.delivery_radius_km`,
			p.ID, p.Name, p.Lat, p.Lon, p.Radius()); err != nil {
			return fmt.Errorf("seed pharmacy %s: %w", p.ID, err)
		}
	}

	for _, e := range inventory {
		if _, err := tx.Exec(ctx, `
			INSERT INTO inventory (pharmacy_id, sku, qty, price)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (pharmacy_id, sku) DO UPDATE SET
				qty = EXCLUDED.qty, price = EXCLUDED.price`,
			e.PharmacyID, e.SKU, e.Qty, e.Price); err != nil {
			return fmt.Errorf("seed inventory %s/%s: %w", e.PharmacyID, e.SKU, err)
		}
	}

	for _, f := range formulary {
		if _, err := tx.Exec(ctx, `
			INSERT INTO formulary (sku, drug_name, indication_tags, min_age, contraindication_keywords, dose, frequency)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (sku) DO UPDATE SET
				drug_name = EXCLUDED.drug_name, indication_tags = EXCLUDED.indication_tags,
				min_age = EXCLUDED.min_age, contraindication_keywords = EXCLUDED.contraindication_keywords,
				dose = EXCLUDED.dose, frequency = EXCLUDED.frequency`,
			f.SKU, f.DrugName, f.IndicationTags, f.MinAge, f.ContraindicationKeywords, f.Dose, f.Frequency); err != nil {
			return fmt.Errorf("seed formulary %s: %w", f.SKU, err)
		}
	}

	return tx.Commit(ctx)
}
