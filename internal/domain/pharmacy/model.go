package pharmacy

// DefaultDeliveryRadiusKm applies when a directory entry does not declare
// its own delivery radius.
const DefaultDeliveryRadiusKm = 10

// Pharmacy is a directory entry. Reference data, read-only during a run.
type Pharmacy struct {
	ID               string  `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	Lat              float64 `db:"lat" json:"lat"`
	Lon              float64 `db:"lon" json:"lon"`
	DeliveryRadiusKm float64 `db:"delivery_radius_km" json:"delivery_km"`
}

// Radius returns the effective delivery radius in kilometers.
func (p *Pharmacy) Radius() float64 {
	if p.DeliveryRadiusKm <= 0 {
		return DefaultDeliveryRadiusKm
	}
	return p.DeliveryRadiusKm
}

// InventoryEntry is the stock row for one (pharmacy, sku) pair. It is the
// only entity mutated during a run, and only through Reserve.
type InventoryEntry struct {
	PharmacyID string  `db:"pharmacy_id" json:"pharmacy_id"`
	SKU        string  `db:"sku" json:"sku"`
	Qty        int     `db:"qty" json:"qty"`
	Price      float64 `db:"price" json:"price"`
}

// Match is the outcome of a successful stock lookup for one SKU.
type Match struct {
	PharmacyID   string  `json:"pharmacy_id"`
	PharmacyName string  `json:"pharmacy_name"`
	SKU          string  `json:"sku"`
	Qty          int     `json:"qty"`
	UnitPrice    float64 `json:"price"`
	ETAMin       int     `json:"eta_min"`
	DeliveryFee  float64 `json:"delivery_fee"`
	DistanceKm   float64 `json:"distance_km"`
	Reserved     bool    `json:"reserved"`
}
