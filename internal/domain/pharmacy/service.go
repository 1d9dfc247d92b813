package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/triage/triage/internal/domain/patient"
	"github.com/triage/triage/internal/platform/eventlog"
)

// ErrNoCandidate is returned by FindNearestWithStock when no pharmacy is
// both in delivery range and stocked. Callers treat it as a soft outcome,
// not a failure.
var ErrNoCandidate = errors.New("no pharmacy in range with sufficient stock")

// Service implements geospatial stock matching over the directory and
// inventory repositories.
type Service struct {
	directory DirectoryRepository
	inventory InventoryRepository
	events    *eventlog.Log
	logger    zerolog.Logger
}

func NewService(directory DirectoryRepository, inventory InventoryRepository, events *eventlog.Log, logger zerolog.Logger) *Service {
	return &Service{directory: directory, inventory: inventory, events: events, logger: logger}
}

type candidate struct {
	pharmacy *Pharmacy
	price    float64
	distance float64
}

// FindNearestWithStock returns the best match for one SKU: among
// pharmacies whose delivery radius covers the patient and whose stock
// covers the requested quantity, the cheapest unit price wins, distance
// breaks price ties, and the sort is stable so equal candidates resolve by
// directory order.
func (s *Service) FindNearestWithStock(ctx context.Context, loc patient.Location, sku string, qty int) (*Match, error) {
	pharmacies, err := s.directory.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pharmacy directory: %w", err)
	}

	var candidates []candidate
	for _, p := range pharmacies {
		dist := HaversineKm(loc.Lat, loc.Lon, p.Lat, p.Lon)
		if dist > p.Radius() {
			continue
		}
		entry, err := s.inventory.Get(ctx, p.ID, sku)
		if err != nil || entry.Qty < qty {
			continue
		}
		candidates = append(candidates, candidate{pharmacy: p, price: entry.Price, distance: dist})
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidate
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].price != candidates[j].price {
			return candidates[i].price < candidates[j].price
		}
		return candidates[i].distance < candidates[j].distance
	})

	chosen := candidates[0]
	match := &Match{
		PharmacyID:   chosen.pharmacy.ID,
		PharmacyName: chosen.pharmacy.Name,
		SKU:          sku,
		Qty:          qty,
		UnitPrice:    chosen.price,
		ETAMin:       int(math.Floor(10 + 5*chosen.distance)),
		DeliveryFee:  deliveryFee(chosen.distance),
		DistanceKm:   math.Round(chosen.distance*100) / 100,
	}

	if s.events != nil {
		s.events.Append("Pharmacy", "matched pharmacy", map[string]interface{}{
			"pharmacy_id": match.PharmacyID,
			"sku":         sku,
			"distance_km": match.DistanceKm,
			"eta_min":     match.ETAMin,
		})
	}

	return match, nil
}

// Reserve atomically decrements stock for the matched pharmacy. Returns
// false without error when stock ran out between match and reservation.
func (s *Service) Reserve(ctx context.Context, pharmacyID, sku string, qty int) (bool, error) {
	ok, err := s.inventory.Reserve(ctx, pharmacyID, sku, qty)
	if err != nil {
		return false, fmt.Errorf("reserve %s at %s: %w", sku, pharmacyID, err)
	}
	if ok && s.events != nil {
		s.events.Append("Pharmacy", fmt.Sprintf("reserved %d of %s at %s", qty, sku, pharmacyID), nil)
	}
	if !ok {
		s.logger.Info().
			Str("pharmacy_id", pharmacyID).
			Str("sku", sku).
			Msg("reservation conflict, stock gone since match")
	}
	return ok, nil
}

func deliveryFee(distanceKm float64) float64 {
	if distanceKm < 10 {
		return 25
	}
	return 50
}
