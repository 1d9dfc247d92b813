package therapy

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type formularyRepoPG struct{ pool *pgxpool.Pool }

func NewFormularyRepoPG(pool *pgxpool.Pool) FormularyRepository {
	return &formularyRepoPG{pool: pool}
}

const formularyCols = `sku, drug_name, indication_tags, min_age, contraindication_keywords, dose, frequency`

func scanEntry(row pgx.Row) (*FormularyEntry, error) {
	var e FormularyEntry
	err := row.Scan(&e.SKU, &e.DrugName, &e.IndicationTags, &e.MinAge,
		&e.ContraindicationKeywords, &e.Dose, &e.Frequency)
	return &e, err
}

func (r *formularyRepoPG) All(ctx context.Context) ([]*FormularyEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formularyCols+` FROM formulary ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FormularyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *formularyRepoPG) GetBySKU(ctx context.Context, sku string) (*FormularyEntry, error) {
	return scanEntry(r.pool.QueryRow(ctx, `SELECT `+formularyCols+` FROM formulary WHERE sku = $1`, sku))
}

func (r *formularyRepoPG) List(ctx context.Context, limit, offset int) ([]*FormularyEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM formulary`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+formularyCols+` FROM formulary ORDER BY sku LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*FormularyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
