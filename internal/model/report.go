package model

// RiskLevel is the risk tier assigned to a validated question
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// rank orders risk levels so floors can be applied
func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// AtLeast returns the higher of r and floor
func (r RiskLevel) AtLeast(floor RiskLevel) RiskLevel {
	if floor.rank() > r.rank() {
		return floor
	}
	return r
}

// IssueCategory classifies a validation issue
type IssueCategory string

const (
	IssueStructural    IssueCategory = "structural"    // Malformed question shape; forces high risk
	IssueClaim         IssueCategory = "claim"         // Unverifiable claim detected in the text
	IssueQuality       IssueCategory = "quality"       // Confusing but well-formed content
	IssueContradiction IssueCategory = "contradiction" // Conflicts with another question in the batch
)

// Issue is a single finding attached to a ValidationResult
type Issue struct {
	Category   IssueCategory `json:"category"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of validating one question in one pass.
// It carries no timestamps so identical input always yields an identical value.
type ValidationResult struct {
	QuestionID      string    `json:"question_id"`
	ConfidenceScore float64   `json:"confidence_score"` // 0.0-1.0
	RiskLevel       RiskLevel `json:"risk_level"`
	Valid           bool      `json:"valid"`
	Issues          []Issue   `json:"issues"`
	Suggestions     []string  `json:"suggestions"`
	Domains         []string  `json:"domains,omitempty"` // Risk domains the question touches
}

// HasStructuralIssue reports whether the result failed structural validation
func (r ValidationResult) HasStructuralIssue() bool {
	return HasStructural(r.Issues)
}

// HasStructural reports whether any issue is structural
func HasStructural(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Category == IssueStructural {
			return true
		}
	}
	return false
}

// ContradictionKind describes how two questions conflict
type ContradictionKind string

const (
	ContradictionNumeric  ContradictionKind = "numeric"  // Different values for the same fact
	ContradictionPolarity ContradictionKind = "polarity" // Same statement, opposite truth
	ContradictionAnswer   ContradictionKind = "answer"   // Same question, different answers
)

// Contradiction links two questions that make mutually exclusive claims
type Contradiction struct {
	Question1   string            `json:"question_1"`
	Question2   string            `json:"question_2"`
	Kind        ContradictionKind `json:"kind"`
	Description string            `json:"description"`
}

// ValidationSummary aggregates the results of one batch.
// It is derived from ValidationResults and never stored on its own.
type ValidationSummary struct {
	TotalQuestions    int               `json:"total_questions"`
	ValidQuestions    int               `json:"valid_questions"`
	ValidationRate    float64           `json:"validation_rate"` // Percentage, 2 decimals
	AverageConfidence float64           `json:"average_confidence"`
	HighRiskCount     int               `json:"high_risk_count"`
	RiskDistribution  map[RiskLevel]int `json:"risk_distribution"`
	Contradictions    []Contradiction   `json:"contradictions"`
	Recommendations   []string          `json:"recommendations,omitempty"`
}
