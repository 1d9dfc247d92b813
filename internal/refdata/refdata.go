// Package refdata loads the pharmacy directory, inventory, and formulary
// reference data from JSON files. When a path is empty or the file is
// missing, built-in defaults are used so the server runs out of the box.
package refdata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/triage/triage/internal/domain/pharmacy"
	"github.com/triage/triage/internal/domain/therapy"
)

// Pharmacies loads the pharmacy directory from path, or the built-in
// defaults if path is empty or does not exist.
func Pharmacies(path string) ([]*pharmacy.Pharmacy, error) {
	var out []*pharmacy.Pharmacy
	ok, err := loadJSON(path, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultPharmacies(), nil
	}
	return out, nil
}

// Inventory loads inventory rows from path, or the built-in defaults if
// path is empty or does not exist.
func Inventory(path string) ([]*pharmacy.InventoryEntry, error) {
	var out []*pharmacy.InventoryEntry
	ok, err := loadJSON(path, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultInventory(), nil
	}
	return out, nil
}

// Formulary loads OTC formulary entries from path, or the built-in defaults
// if path is empty or does not exist.
func Formulary(path string) ([]*therapy.FormularyEntry, error) {
	var out []*therapy.FormularyEntry
	ok, err := loadJSON(path, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultFormulary(), nil
	}
	return out, nil
}

// loadJSON reads path into v. It reports false without error when path is
// empty or the file does not exist, so callers can fall back to defaults.
func loadJSON(path string, v interface{}) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// DefaultPharmacies returns the built-in pharmacy directory. Coordinates
// cluster around the default delivery point (19.12, 72.84).
func DefaultPharmacies() []*pharmacy.Pharmacy {
	return []*pharmacy.Pharmacy{
		{ID: "ph001", Name: "Apollo Pharmacy Andheri", Lat: 19.1197, Lon: 72.8468, DeliveryRadiusKm: 10},
		{ID: "ph002", Name: "MedPlus Juhu", Lat: 19.1076, Lon: 72.8263, DeliveryRadiusKm: 10},
		{ID: "ph003", Name: "Wellness Forever Bandra", Lat: 19.0596, Lon: 72.8295, DeliveryRadiusKm: 12},
		{ID: "ph004", Name: "Noble Chemist Goregaon", Lat: 19.1663, Lon: 72.8526, DeliveryRadiusKm: 8},
		{ID: "ph005", Name: "City Care Pharmacy Powai", Lat: 19.1176, Lon: 72.9060, DeliveryRadiusKm: 10},
	}
}

// DefaultInventory returns the built-in stock levels.
func DefaultInventory() []*pharmacy.InventoryEntry {
	return []*pharmacy.InventoryEntry{
		{PharmacyID: "ph001", SKU: "OTC001", Qty: 24, Price: 35},
		{PharmacyID: "ph001", SKU: "OTC002", Qty: 10, Price: 95},
		{PharmacyID: "ph001", SKU: "OTC004", Qty: 40, Price: 22},
		{PharmacyID: "ph002", SKU: "OTC001", Qty: 8, Price: 32},
		{PharmacyID: "ph002", SKU: "OTC003", Qty: 15, Price: 110},
		{PharmacyID: "ph002", SKU: "OTC004", Qty: 0, Price: 20},
		{PharmacyID: "ph003", SKU: "OTC001", Qty: 30, Price: 38},
		{PharmacyID: "ph003", SKU: "OTC002", Qty: 6, Price: 90},
		{PharmacyID: "ph003", SKU: "OTC003", Qty: 12, Price: 105},
		{PharmacyID: "ph004", SKU: "OTC001", Qty: 5, Price: 30},
		{PharmacyID: "ph004", SKU: "OTC004", Qty: 18, Price: 25},
		{PharmacyID: "ph005", SKU: "OTC002", Qty: 20, Price: 88},
		{PharmacyID: "ph005", SKU: "OTC003", Qty: 9, Price: 115},
		{PharmacyID: "ph005", SKU: "OTC004", Qty: 25, Price: 24},
	}
}

// DefaultFormulary returns the built-in OTC formulary.
func DefaultFormulary() []*therapy.FormularyEntry {
	return []*therapy.FormularyEntry{
		{
			SKU:                      "OTC001",
			DrugName:                 "Paracetamol 500mg",
			IndicationTags:           []string{"pneumonia", "fever", "covid_suspect"},
			MinAge:                   12,
			ContraindicationKeywords: []string{"liver"},
			Dose:                     "500mg",
			Frequency:                "Every 6 hours as needed",
		},
		{
			SKU:                      "OTC002",
			DrugName:                 "Dextromethorphan Syrup",
			IndicationTags:           []string{"pneumonia", "cough"},
			MinAge:                   18,
			ContraindicationKeywords: []string{"asthma"},
			Dose:                     "10ml",
			Frequency:                "Every 8 hours",
		},
		{
			SKU:                      "OTC003",
			DrugName:                 "Ibuprofen 400mg",
			IndicationTags:           []string{"fever", "pain"},
			MinAge:                   16,
			ContraindicationKeywords: []string{"ibuprofen", "nsaid", "ulcer"},
			Dose:                     "400mg",
			Frequency:                "Every 8 hours with food",
		},
		{
			SKU:                      "OTC004",
			DrugName:                 "ORS Solution",
			IndicationTags:           []string{"supportive_care"},
			MinAge:                   0,
			ContraindicationKeywords: nil,
			Dose:                     "1 sachet in 1L water",
			Frequency:                "Sip through the day",
		},
	}
}
