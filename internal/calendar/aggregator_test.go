// internal/calendar/aggregator_test.go
package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/models"
)

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestAggregate_ProjectionRules(t *testing.T) {
	due := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	start := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	projectDue := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	snap := Snapshot{
		Assignments: []models.Assignment{
			{ID: "a1", Title: "essay", Status: models.AssignmentPending, DueDate: &due},
		},
		Projects: []models.Project{
			{ID: "p1", Name: "compiler", Status: models.ProjectInProgress, StartDate: start, DueDate: &projectDue},
		},
	}

	month := Aggregate(snap, 2024, time.March, time.UTC)

	require.Equal(t, 3, month.Total())

	day5 := month.Events(5)
	require.Len(t, day5, 2)
	assert.Equal(t, KindAssignment, day5[0].Kind)
	assert.Equal(t, "essay", day5[0].Title)
	assert.Equal(t, KindProjectStart, day5[1].Kind)
	assert.Equal(t, "compiler", day5[1].Title)

	day10 := month.Events(10)
	require.Len(t, day10, 1)
	assert.Equal(t, KindProjectDue, day10[0].Kind)
	assert.Equal(t, 1, month.Count(10))
}

func TestAggregate_InternshipEvents(t *testing.T) {
	applied := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	interview := time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)

	snap := Snapshot{
		Internships: []models.Internship{
			{ID: "i1", Company: "Acme", Status: models.InternshipInterview,
				ApplicationDate: applied, InterviewDate: &interview},
			{ID: "i2", Company: "Initech", Status: models.InternshipApplied,
				ApplicationDate: applied},
		},
	}

	month := Aggregate(snap, 2024, time.March, time.UTC)

	day2 := month.Events(2)
	require.Len(t, day2, 2)
	assert.Equal(t, KindApplication, day2[0].Kind)
	assert.Equal(t, "Acme", day2[0].Title)
	assert.Equal(t, KindApplication, day2[1].Kind)
	assert.Equal(t, "Initech", day2[1].Title)

	day20 := month.Events(20)
	require.Len(t, day20, 1)
	assert.Equal(t, KindInterview, day20[0].Kind)
}

func TestAggregate_FiltersToRequestedMonth(t *testing.T) {
	snap := Snapshot{
		Assignments: []models.Assignment{
			{ID: "a1", Title: "in feb", Status: models.AssignmentPending,
				DueDate: datePtr(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))},
			{ID: "a2", Title: "in apr", Status: models.AssignmentPending,
				DueDate: datePtr(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))},
			{ID: "a3", Title: "no due date", Status: models.AssignmentPending},
		},
	}

	month := Aggregate(snap, 2024, time.March, time.UTC)
	assert.Zero(t, month.Total())
}

// TestAggregate_LocalDayEquality pins matching to the viewer's zone: an
// instant late on March 5 UTC is March 6 in a UTC+14 zone.
func TestAggregate_LocalDayEquality(t *testing.T) {
	ahead := time.FixedZone("UTC+14", 14*60*60)
	due := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)

	snap := Snapshot{
		Assignments: []models.Assignment{
			{ID: "a1", Title: "late night", Status: models.AssignmentPending, DueDate: &due},
		},
	}

	month := Aggregate(snap, 2024, time.March, ahead)
	assert.Zero(t, month.Count(5))
	require.Equal(t, 1, month.Count(6))
}

func TestAggregate_CompletedColors(t *testing.T) {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Assignments: []models.Assignment{
			{ID: "a1", Title: "done", Status: models.AssignmentCompleted, DueDate: &due},
			{ID: "a2", Title: "open", Status: models.AssignmentPending, DueDate: &due},
		},
	}

	month := Aggregate(snap, 2024, time.March, time.UTC)
	day5 := month.Events(5)
	require.Len(t, day5, 2)
	assert.Equal(t, "bg-success", day5[0].ColorClass)
	assert.Equal(t, "bg-primary", day5[1].ColorClass)
}
