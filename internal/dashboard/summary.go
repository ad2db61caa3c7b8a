// internal/dashboard/summary.go

// Package dashboard folds the three entity lists into the headline
// numbers the tracker shows: assignment pressure and the internship
// application funnel.
package dashboard

import (
	"time"

	"studytrack/internal/calendar"
	"studytrack/internal/models"
	"studytrack/internal/temporal"
)

// Summary is the aggregated status view for one owner at one moment.
// It must be rebuilt on every poll; the overdue numbers move with the
// clock.
type Summary struct {
	PendingAssignments   int                              `json:"pendingAssignments"`
	OverdueAssignments   int                              `json:"overdueAssignments"`
	AlmostDueAssignments int                              `json:"almostDueAssignments"`
	ProjectsInProgress   int                              `json:"projectsInProgress"`
	InternshipsByStatus  map[models.InternshipStatus]int  `json:"internshipsByStatus"`
}

// Build computes the summary from a snapshot and the current time.
func Build(snap calendar.Snapshot, now time.Time) Summary {
	s := Summary{InternshipsByStatus: make(map[models.InternshipStatus]int, len(models.InternshipStatuses))}
	for _, status := range models.InternshipStatuses {
		s.InternshipsByStatus[status] = 0
	}

	for _, a := range snap.Assignments {
		if a.Status == models.AssignmentPending {
			s.PendingAssignments++
		}
		if temporal.AssignmentOverdue(a, now) {
			s.OverdueAssignments++
		} else if temporal.AssignmentAlmostDue(a, now) {
			s.AlmostDueAssignments++
		}
	}

	for _, p := range snap.Projects {
		if p.Status == models.ProjectInProgress {
			s.ProjectsInProgress++
		}
	}

	for _, i := range snap.Internships {
		s.InternshipsByStatus[i.Status]++
	}

	return s
}
