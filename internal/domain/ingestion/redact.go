package ingestion

import "regexp"

var (
	emailRe = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe = regexp.MustCompile(`\b\d{10}\b`)
	idRe    = regexp.MustCompile(`\b\d{4,}\b`)
)

// Deidentify strips obvious PII from free-text notes before they enter the
// pipeline: emails, 10-digit phone numbers, and long digit sequences that
// look like record identifiers. Order matters: phone numbers are matched
// before the generic id pattern would swallow them.
func Deidentify(text string) string {
	if text == "" {
		return text
	}
	text = emailRe.ReplaceAllString(text, "[REDACTED_EMAIL]")
	text = phoneRe.ReplaceAllString(text, "[REDACTED_PHONE]")
	text = idRe.ReplaceAllString(text, "[REDACTED_ID]")
	return text
}
