package therapy

// FormularyEntry maps to the formulary table: an over-the-counter
// medication with its indications, age floor, and contraindication
// keywords checked against the patient's allergy list.
type FormularyEntry struct {
	SKU                      string   `db:"sku" json:"sku"`
	DrugName                 string   `db:"drug_name" json:"drug_name"`
	IndicationTags           []string `db:"indication_tags" json:"indication_tags"`
	MinAge                   int      `db:"min_age" json:"min_age"`
	ContraindicationKeywords []string `db:"contraindication_keywords" json:"contraindication_keywords"`
	Dose                     string   `db:"dose" json:"dose"`
	Frequency                string   `db:"frequency" json:"frequency"`
}

// OTCOption is one suggested over-the-counter therapy.
type OTCOption struct {
	SKU       string   `json:"sku"`
	DrugName  string   `json:"drug_name"`
	Dose      string   `json:"dose"`
	Frequency string   `json:"freq"`
	Warnings  []string `json:"warnings"`
}

// Plan is the therapy engine output: ordered OTC suggestions plus advisory
// red flags lifted from the patient notes. Empty slices are valid results.
type Plan struct {
	OTCOptions []OTCOption `json:"otc_options"`
	RedFlags   []string    `json:"red_flags"`
}
