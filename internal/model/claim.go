package model

// ClaimSignal is a risk-bearing pattern found in a question's text
type ClaimSignal struct {
	Kind        SignalKind `json:"kind"`
	MatchedText string     `json:"matched_text"`
	Weight      float64    `json:"weight"`
	Domain      string     `json:"domain,omitempty"`   // Risk domain for domain_risk signals (e.g., "medicine")
	Language    string     `json:"language,omitempty"` // Rule language that matched
	Source      string     `json:"source"`             // "stem" or "option[i]"
	Offset      int        `json:"offset"`             // Byte offset in the normalized source text
}

// SignalKind categorizes the nature of an unverifiable claim
type SignalKind string

const (
	SignalTemporal   SignalKind = "temporal"    // Dates, years, "recently", "hiện nay"
	SignalNumeric    SignalKind = "numeric"     // Explicit numbers and count asks
	SignalDomainRisk SignalKind = "domain_risk" // Medicine, law, finance, current events
	SignalProperNoun SignalKind = "proper_noun" // Named people, places, organizations
)

// SignalKinds lists the kinds in extraction priority order.
// Overlapping matches are claimed by the earlier kind.
var SignalKinds = []SignalKind{SignalTemporal, SignalNumeric, SignalDomainRisk, SignalProperNoun}

// Valid reports whether k is a known signal kind
func (k SignalKind) Valid() bool {
	for _, known := range SignalKinds {
		if k == known {
			return true
		}
	}
	return false
}
