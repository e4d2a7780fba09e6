package proposal

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Status is a proposal's position in the resolution workflow.
//
// PendingMiddleware -> PendingReview -> Approved* -> Completed, with Error
// reachable from any non-terminal state. Completed and Error are terminal.
type Status string

const (
	PendingMiddleware   Status = "Pending Middleware"
	PendingReview       Status = "Pending Review"
	ApprovedUseExisting Status = "Approved - Use Existing"
	ApprovedCreateNew   Status = "Approved - Create New"
	Completed           Status = "Completed"
	Failed              Status = "Error"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}

var transitions = map[Status][]Status{
	PendingMiddleware:   {PendingReview, Failed},
	PendingReview:       {ApprovedUseExisting, ApprovedCreateNew, Failed},
	ApprovedUseExisting: {Completed, Failed},
	ApprovedCreateNew:   {Completed, Failed},
}

// CanTransition reports whether the workflow permits moving from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("match proposal cannot move from %q to %q", e.From, e.To)
}

func (p *Proposal) transition(next Status) error {
	if !p.Status.CanTransition(next) {
		return &TransitionError{From: p.Status, To: next}
	}
	p.Status = next
	return nil
}

// Resolve records a human decision on a proposal pending review. Approval
// with UseExisting requires the selected external id; CreateNew must not
// carry one.
func (p *Proposal) Resolve(decision Decision, reason string, selectedExternalID string, at time.Time) error {
	next := ApprovedCreateNew
	if decision == UseExisting {
		next = ApprovedUseExisting
	}

	if decision == UseExisting && selectedExternalID == "" {
		return errors.New("a selected external id is required to use an existing identity")
	}
	if decision == CreateNew && selectedExternalID != "" {
		return errors.New("a selected external id cannot accompany creating a new identity")
	}

	if err := p.transition(next); err != nil {
		return err
	}

	resolved := TimestampFromTime(at)
	p.Decision = &decision
	p.ResolvedAt = &resolved
	if reason != "" {
		p.Reason = &reason
	}
	if selectedExternalID != "" {
		p.SelectedExternalID = &selectedExternalID
	}

	return nil
}

// Complete marks an approved proposal as applied back to the Account.
func (p *Proposal) Complete() error {
	return p.transition(Completed)
}

// Fail moves a proposal to the terminal error state, recording the reason.
func (p *Proposal) Fail(reason string) error {
	if err := p.transition(Failed); err != nil {
		return err
	}
	if reason != "" {
		p.Reason = &reason
	}
	return nil
}
