// internal/calendar/aggregator.go

// Package calendar merges the three entity lists into a per-day event
// view for one month. It operates on read-only snapshots; ordering
// within a day is stable insertion order (assignments, then projects,
// then internships).
package calendar

import (
	"time"

	"studytrack/internal/models"
)

// EventKind tags where a calendar event came from.
type EventKind string

const (
	KindAssignment   EventKind = "Assignment"
	KindProjectDue   EventKind = "ProjectDue"
	KindProjectStart EventKind = "ProjectStart"
	KindApplication  EventKind = "Application"
	KindInterview    EventKind = "Interview"
)

// Color classes and link targets carried as data for the presentation
// layer, mirroring the entity they project.
const (
	colorDone      = "bg-success"
	colorPrimary   = "bg-primary"
	colorSecondary = "bg-secondary"
	colorWarning   = "bg-warning"

	linkAssignments = "/assignments"
	linkProjects    = "/projects"
	linkInternships = "/internships"
)

// Event is one calendar entry derived from an entity date field.
type Event struct {
	Kind       EventKind `json:"kind"`
	Title      string    `json:"title"`
	ColorClass string    `json:"colorClass"`
	LinkTarget string    `json:"linkTarget"`
	SourceID   string    `json:"sourceId"`
}

// Snapshot is the read-only input: the bound owner's three lists.
type Snapshot struct {
	Assignments []models.Assignment
	Projects    []models.Project
	Internships []models.Internship
}

// Month is the aggregation result for one calendar month.
type Month struct {
	Year  int
	Month time.Month
	Days  map[int][]Event
}

// Events returns the full list for one day.
func (m Month) Events(day int) []Event {
	return m.Days[day]
}

// Count returns how many events fall on one day.
func (m Month) Count(day int) int {
	return len(m.Days[day])
}

// Total returns the number of events across the whole month.
func (m Month) Total() int {
	total := 0
	for _, events := range m.Days {
		total += len(events)
	}
	return total
}

// Aggregate projects the snapshot onto the given month. Day matching is
// by calendar-day equality in loc, the viewer's time zone. An entity
// contributes zero, one or two events per the projection rules.
func Aggregate(snap Snapshot, year int, month time.Month, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}
	out := Month{Year: year, Month: month, Days: make(map[int][]Event)}

	add := func(at time.Time, ev Event) {
		local := at.In(loc)
		y, m, d := local.Date()
		if y != year || m != month {
			return
		}
		out.Days[d] = append(out.Days[d], ev)
	}

	for _, a := range snap.Assignments {
		if a.DueDate == nil {
			continue
		}
		color := colorPrimary
		if a.Status == models.AssignmentCompleted {
			color = colorDone
		}
		add(*a.DueDate, Event{
			Kind:       KindAssignment,
			Title:      a.Title,
			ColorClass: color,
			LinkTarget: linkAssignments,
			SourceID:   a.ID,
		})
	}

	for _, p := range snap.Projects {
		if p.DueDate != nil {
			color := colorSecondary
			if p.Status == models.ProjectCompleted {
				color = colorDone
			}
			add(*p.DueDate, Event{
				Kind:       KindProjectDue,
				Title:      p.Name,
				ColorClass: color,
				LinkTarget: linkProjects,
				SourceID:   p.ID,
			})
		}
		add(p.StartDate, Event{
			Kind:       KindProjectStart,
			Title:      p.Name,
			ColorClass: colorWarning,
			LinkTarget: linkProjects,
			SourceID:   p.ID,
		})
	}

	for _, i := range snap.Internships {
		add(i.ApplicationDate, Event{
			Kind:       KindApplication,
			Title:      i.Company,
			ColorClass: colorSecondary,
			LinkTarget: linkInternships,
			SourceID:   i.ID,
		})
		if i.InterviewDate != nil {
			add(*i.InterviewDate, Event{
				Kind:       KindInterview,
				Title:      i.Company,
				ColorClass: colorWarning,
				LinkTarget: linkInternships,
				SourceID:   i.ID,
			})
		}
	}

	return out
}
