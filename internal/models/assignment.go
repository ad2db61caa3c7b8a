// internal/models/assignment.go
package models

import "time"

// Priority ranks an assignment.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// AssignmentStatus is the assignment lifecycle state.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "Pending"
	AssignmentCompleted AssignmentStatus = "Completed"
)

// Assignment is a piece of graded coursework owned by one account.
// CreatedAt is assigned by the store on insert and immutable afterwards.
type Assignment struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"ownerId"`
	Title     string           `json:"title"`
	Subject   string           `json:"subject"`
	Priority  Priority         `json:"priority"`
	DueDate   *time.Time       `json:"dueDate,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Status    AssignmentStatus `json:"status"`
}

// Toggled returns the opposite of the two assignment states.
func (s AssignmentStatus) Toggled() AssignmentStatus {
	if s == AssignmentPending {
		return AssignmentCompleted
	}
	return AssignmentPending
}
