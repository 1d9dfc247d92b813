package therapy

import "context"

// FormularyRepository provides read access to the medication formulary.
// The formulary is reference data: read-only during a triage run.
type FormularyRepository interface {
	All(ctx context.Context) ([]*FormularyEntry, error)
	GetBySKU(ctx context.Context, sku string) (*FormularyEntry, error)
	List(ctx context.Context, limit, offset int) ([]*FormularyEntry, int, error)
}
