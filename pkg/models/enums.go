package models

import (
	"fmt"
	"slices"
	"time"
)

type Role string

const (
	RoleIntern  Role = "Intern"
	RoleMentor  Role = "Mentor"
	RoleAdmin   Role = "Admin"
	RoleSuspend Role = "Suspend"
)

var Roles = []Role{RoleIntern, RoleMentor, RoleAdmin, RoleSuspend}

func (r Role) Valid() bool { return slices.Contains(Roles, r) }

type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "Submitted"
	StatusUnderReview        ApplicationStatus = "Under Review"
	StatusInterviewScheduled ApplicationStatus = "Interview Scheduled"
	StatusShortlisted        ApplicationStatus = "Shortlisted"
	StatusHired              ApplicationStatus = "Hired"
	StatusRejected           ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusShortlisted,
	StatusHired,
	StatusRejected,
}

func (s ApplicationStatus) Valid() bool { return slices.Contains(ApplicationStatuses, s) }

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "Scheduled"
	MeetingCompleted MeetingStatus = "Completed"
	MeetingCancelled MeetingStatus = "Cancelled"
)

func (s MeetingStatus) Valid() bool {
	return s == MeetingScheduled || s == MeetingCompleted || s == MeetingCancelled
}

type TargetRole string

const (
	TargetAll      TargetRole = "All"
	TargetIntern   TargetRole = "Intern"
	TargetMentor   TargetRole = "Mentor"
	TargetAdmin    TargetRole = "Admin"
	TargetSpecific TargetRole = "Specific"
)

func (t TargetRole) Valid() bool {
	switch t {
	case TargetAll, TargetIntern, TargetMentor, TargetAdmin, TargetSpecific:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskAssigned      TaskStatus = "Assigned"
	TaskPendingReview TaskStatus = "Pending Review"
	TaskApproved      TaskStatus = "Approved"
	TaskNeedsRevision TaskStatus = "Needs Revision"
)

// VisibleTo reports whether the update is addressed to u.
func (up Update) VisibleTo(u User) bool {
	switch up.TargetRole {
	case TargetAll:
		return true
	case TargetSpecific:
		return up.TargetUserID == u.ID
	default:
		return string(up.TargetRole) == string(u.Role)
	}
}

// IsReadBy reports whether userID is in the update's read set.
func (up Update) IsReadBy(userID string) bool {
	return slices.Contains(up.ReadBy, userID)
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Start parses the meeting date and time in loc.
func (m Meeting) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, m.Date+" "+m.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse meeting start: %w", err)
	}
	return t, nil
}

// End returns start plus duration.
func (m Meeting) End(loc *time.Location) (time.Time, error) {
	start, err := m.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(m.DurationMinutes) * time.Minute), nil
}

// EndTime formats the derived end time as HH:MM, or "" when the start is unparsable.
func (m Meeting) EndTime() string {
	end, err := m.End(time.UTC)
	if err != nil {
		return ""
	}
	return end.Format(ClockLayout)
}
