package patient

// Record holds the patient attributes the triage pipeline evaluates.
// Immutable once ingestion has produced it.
type Record struct {
	Age       int      `json:"age"`
	Allergies []string `json:"allergies"`
	Notes     string   `json:"notes"`
}

// Location is the patient's position used for pharmacy matching.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
