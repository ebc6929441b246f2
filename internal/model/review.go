package model

import "time"

// ReviewPriority orders items in the human review queue
type ReviewPriority string

const (
	PriorityMedium ReviewPriority = "medium"
	PriorityHigh   ReviewPriority = "high"
)

// ReviewStatus is the review state recorded on queue items and audit entries
type ReviewStatus string

const (
	ReviewPending      ReviewStatus = "pending"
	ReviewAutoApproved ReviewStatus = "auto_approved"
	ReviewApproved     ReviewStatus = "approved"
	ReviewRejected     ReviewStatus = "rejected"
	ReviewFailed       ReviewStatus = "failed" // Validation or generation error
)

// Released reports whether content with this status may reach a learner
func (s ReviewStatus) Released() bool {
	return s == ReviewAutoApproved || s == ReviewApproved
}

// ReviewQueueItem is content held for human approval
type ReviewQueueItem struct {
	ID              string         `json:"id"`
	ContentRef      string         `json:"content_ref"` // Question ID
	RiskScore       float64        `json:"risk_score"`  // 1 - confidence
	ConfidenceScore float64        `json:"confidence_score"`
	Priority        ReviewPriority `json:"priority"`
	Reasons         []string       `json:"reasons"`
	CreatedAt       time.Time      `json:"created_at"`
	Status          ReviewStatus   `json:"status"`
	AuditRef        string         `json:"audit_ref,omitempty"` // Audit entry that flagged the content
	Reviewer        string         `json:"reviewer,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}

// AuditEntry is one immutable record in the audit trail.
// Corrections are new entries whose Supersedes points at the prior entry.
type AuditEntry struct {
	ID                string             `json:"id"`
	Sequence          int64              `json:"sequence"`
	ContentID         string             `json:"content_id"`
	BatchID           string             `json:"batch_id,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	ModelUsed         string             `json:"model_used,omitempty"`
	PromptHash        string             `json:"prompt_hash,omitempty"`
	ConfidenceScore   float64            `json:"confidence_score"`
	ValidationResults []ValidationResult `json:"validation_results,omitempty"`
	ReviewStatus      ReviewStatus       `json:"review_status"`
	Error             string             `json:"error,omitempty"`
	Supersedes        string             `json:"supersedes,omitempty"`
	Reviewer          string             `json:"reviewer,omitempty"`
}

// Clone returns a deep copy so stored entries cannot be changed through shared slices
func (e AuditEntry) Clone() AuditEntry {
	out := e
	if e.ValidationResults != nil {
		out.ValidationResults = make([]ValidationResult, len(e.ValidationResults))
		for i, r := range e.ValidationResults {
			out.ValidationResults[i] = r.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the result
func (r ValidationResult) Clone() ValidationResult {
	out := r
	if r.Issues != nil {
		out.Issues = make([]Issue, len(r.Issues))
		copy(out.Issues, r.Issues)
	}
	if r.Suggestions != nil {
		out.Suggestions = make([]string, len(r.Suggestions))
		copy(out.Suggestions, r.Suggestions)
	}
	if r.Domains != nil {
		out.Domains = make([]string, len(r.Domains))
		copy(out.Domains, r.Domains)
	}
	return out
}
