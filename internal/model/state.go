package model

import "fmt"

// QuestionState tracks a question through validation and review
type QuestionState string

const (
	StateGenerated        QuestionState = "generated"
	StateValidated        QuestionState = "validated"
	StateFlaggedForReview QuestionState = "flagged_for_review"
	StateReviewed         QuestionState = "reviewed"
	StateApproved         QuestionState = "approved"
	StateRejected         QuestionState = "rejected"
)

var transitions = map[QuestionState][]QuestionState{
	StateGenerated:        {StateValidated},
	StateValidated:        {StateApproved, StateFlaggedForReview, StateRejected},
	StateFlaggedForReview: {StateReviewed},
	StateReviewed:         {StateApproved, StateRejected},
}

// Terminal reports whether no further transitions are possible
func (s QuestionState) Terminal() bool {
	return s == StateApproved || s == StateRejected
}

// CanTransition reports whether from -> to is a legal move
func CanTransition(from, to QuestionState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns to if the move is legal, otherwise an error wrapping ErrInvalidTransition
func Transition(from, to QuestionState) (QuestionState, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// Walk applies a sequence of transitions starting at from
func Walk(from QuestionState, steps ...QuestionState) (QuestionState, error) {
	state := from
	for _, step := range steps {
		next, err := Transition(state, step)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}
