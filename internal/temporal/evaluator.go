// internal/temporal/evaluator.go

// Package temporal derives due-date status from stored dates and the
// current clock. Everything here is pure; callers must re-evaluate on
// every render or poll because "now" advances.
package temporal

import (
	"fmt"
	"time"

	"studytrack/internal/models"
)

// AlmostDueWindow is how far ahead of a due date an open item starts
// counting as almost due.
const AlmostDueWindow = 48 * time.Hour

// Kind selects the per-entity open-status table.
type Kind string

const (
	KindAssignment Kind = "assignment"
	KindProject    Kind = "project"
	KindInternship Kind = "internship"
)

// openStatuses maps each kind to the statuses for which due-date
// evaluation applies. Internships carry no due date, so the set is empty.
var openStatuses = map[Kind]map[string]struct{}{
	KindAssignment: {string(models.AssignmentPending): {}},
	KindProject:    {string(models.ProjectInProgress): {}},
	KindInternship: {},
}

// IsOpen reports whether status is a non-terminal state for kind.
func IsOpen(kind Kind, status string) bool {
	_, ok := openStatuses[kind][status]
	return ok
}

// IsOverdue reports whether an item of the given kind is past its due
// date. Absent due dates and terminal statuses never count as overdue.
func IsOverdue(kind Kind, dueDate *time.Time, status string, now time.Time) bool {
	if dueDate == nil || !IsOpen(kind, status) {
		return false
	}
	return now.After(*dueDate)
}

// IsAlmostDue reports whether an item is within AlmostDueWindow of its
// due date but not yet past it. Mutually exclusive with IsOverdue.
func IsAlmostDue(kind Kind, dueDate *time.Time, status string, now time.Time) bool {
	if dueDate == nil || !IsOpen(kind, status) {
		return false
	}
	left := dueDate.Sub(now)
	return left > 0 && left <= AlmostDueWindow
}

// AssignmentOverdue evaluates an assignment against the clock.
func AssignmentOverdue(a models.Assignment, now time.Time) bool {
	return IsOverdue(KindAssignment, a.DueDate, string(a.Status), now)
}

// AssignmentAlmostDue evaluates the warning window for an assignment.
func AssignmentAlmostDue(a models.Assignment, now time.Time) bool {
	return IsAlmostDue(KindAssignment, a.DueDate, string(a.Status), now)
}

// ProjectOverdue evaluates a project against the clock.
func ProjectOverdue(p models.Project, now time.Time) bool {
	return IsOverdue(KindProject, p.DueDate, string(p.Status), now)
}

// ProjectAlmostDue evaluates the warning window for a project.
func ProjectAlmostDue(p models.Project, now time.Time) bool {
	return IsAlmostDue(KindProject, p.DueDate, string(p.Status), now)
}

// RelativeTime buckets how long ago a moment was ("Today", "Yesterday",
// "3 days ago", then weeks, months, years).
func RelativeTime(from, now time.Time) string {
	days := int(now.Sub(from).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
