package escalation

// ReasonCategory tags each escalation reason so downstream logic (doctor
// assignment, reporting) keys on the category rather than sniffing the
// reason text.
type ReasonCategory string

const (
	CategorySeverity     ReasonCategory = "severity"
	CategoryCovid        ReasonCategory = "covid"
	CategoryRedFlag      ReasonCategory = "red_flag"
	CategoryUrgent       ReasonCategory = "urgent_symptoms"
	CategoryPneumoniaGap ReasonCategory = "pneumonia_no_otc"
)

// Reason is one fired escalation rule.
type Reason struct {
	Category ReasonCategory `json:"category"`
	Text     string         `json:"text"`
}

// Doctor is a roster entry with a tele-consult slot.
type Doctor struct {
	ID       string `json:"doctor_id"`
	Name     string `json:"name"`
	TeleSlot string `json:"tele_slot"`
}

// Decision is the escalation engine output. Recommended is true exactly
// when at least one rule fired; Doctor is assigned only when recommended.
type Decision struct {
	Recommended bool     `json:"recommended"`
	Reasons     []Reason `json:"reasons"`
	Doctor      *Doctor  `json:"doctor,omitempty"`
}
