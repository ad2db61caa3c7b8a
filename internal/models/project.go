// internal/models/project.go
package models

import "time"

// ProjectStatus is the project lifecycle state.
type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// Project is a longer-running effort with a fixed start date and an
// optional due date. Type is free-form (Academic, Personal, ...).
type Project struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type"`
	StartDate   time.Time     `json:"startDate"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	RepoLink    string        `json:"repoLink,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Status      ProjectStatus `json:"status"`
}
