package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrBatchTooLarge is returned when a batch exceeds the pairwise comparison bound
	ErrBatchTooLarge = errors.New("batch too large for contradiction detection")

	// ErrReviewNotFound is returned when a review queue item does not exist
	ErrReviewNotFound = errors.New("review item not found")

	// ErrAlreadyResolved is returned when resolving an item that is no longer pending
	ErrAlreadyResolved = errors.New("review item already resolved")

	// ErrInvalidTransition is returned for illegal question state changes
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNoModels is returned when consensus is requested without any model
	ErrNoModels = errors.New("no models configured")
)

// StructuralError reports a malformed question. It is never retried.
type StructuralError struct {
	QuestionID string
	Issues     []Issue
}

func (e *StructuralError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Message)
	}
	return fmt.Sprintf("structural error in question %q: %s", e.QuestionID, strings.Join(msgs, "; "))
}

// LowConsensusError reports model outputs that disagree too much to merge
type LowConsensusError struct {
	PromptHash   string
	Score        float64
	MinAgreement float64
}

func (e *LowConsensusError) Error() string {
	return fmt.Sprintf("low consensus: agreement %.3f below minimum %.3f", e.Score, e.MinAgreement)
}

// AdapterErrorKind classifies a failed model call
type AdapterErrorKind string

const (
	AdapterTimeout AdapterErrorKind = "timeout"
	AdapterNetwork AdapterErrorKind = "network"
	AdapterAPI     AdapterErrorKind = "api"
)

// AdapterError is a single failed model call
type AdapterError struct {
	ModelID string
	Kind    AdapterErrorKind
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.ModelID, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError wraps err and classifies it
func NewAdapterError(modelID string, err error) *AdapterError {
	var existing *AdapterError
	if errors.As(err, &existing) {
		return existing
	}
	return &AdapterError{ModelID: modelID, Kind: classifyAdapterError(err), Err: err}
}

func classifyAdapterError(err error) AdapterErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return AdapterTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return AdapterTimeout
		}
		return AdapterNetwork
	}
	return AdapterAPI
}

// QuorumError reports that too few adapters succeeded to reach a decision
type QuorumError struct {
	Required  int
	Succeeded int
	Failures  []*AdapterError
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("consensus quorum not met: %d of %d required model calls succeeded", e.Succeeded, e.Required)
}

// Unwrap exposes the individual adapter failures to errors.As
func (e *QuorumError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
