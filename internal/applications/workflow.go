package applications

import (
	"fmt"
	"slices"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const (
	PolicyOpen   = "open"
	PolicyFunnel = "funnel"
)

// Workflow is the status transition table applied by SetStatus.
type Workflow struct {
	policy string
	next   map[models.ApplicationStatus][]models.ApplicationStatus
}

// NewWorkflow builds the table for policy. Under "open" any status may follow
// any other. Under "funnel" applications only move forward and Hired and
// Rejected are final.
func NewWorkflow(policy string) (*Workflow, error) {
	switch policy {
	case PolicyOpen, "":
		next := map[models.ApplicationStatus][]models.ApplicationStatus{}
		for _, from := range models.ApplicationStatuses {
			next[from] = slices.Clone(models.ApplicationStatuses)
		}
		return &Workflow{policy: PolicyOpen, next: next}, nil
	case PolicyFunnel:
		return &Workflow{policy: PolicyFunnel, next: map[models.ApplicationStatus][]models.ApplicationStatus{
			models.StatusSubmitted:          {models.StatusUnderReview, models.StatusRejected},
			models.StatusUnderReview:        {models.StatusInterviewScheduled, models.StatusShortlisted, models.StatusRejected},
			models.StatusInterviewScheduled: {models.StatusShortlisted, models.StatusRejected},
			models.StatusShortlisted:        {models.StatusHired, models.StatusRejected},
			models.StatusHired:              {},
			models.StatusRejected:           {},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown transition policy %q", policy)
	}
}

func (w *Workflow) Policy() string { return w.policy }

// Allowed reports whether from may move to to. Staying put is always allowed.
func (w *Workflow) Allowed(from, to models.ApplicationStatus) bool {
	if from == to {
		return true
	}
	return slices.Contains(w.next[from], to)
}

// Next lists the statuses reachable from from, excluding from itself.
func (w *Workflow) Next(from models.ApplicationStatus) []models.ApplicationStatus {
	out := []models.ApplicationStatus{}
	for _, s := range w.next[from] {
		if s != from {
			out = append(out, s)
		}
	}
	return out
}
