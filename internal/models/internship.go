// internal/models/internship.go
package models

import "time"

// InternshipStatus is one stage of the application funnel.
type InternshipStatus string

const (
	InternshipApplied     InternshipStatus = "Applied"
	InternshipShortlisted InternshipStatus = "Shortlisted"
	InternshipInterview   InternshipStatus = "Interview"
	InternshipOffer       InternshipStatus = "Offer"
	InternshipRejected    InternshipStatus = "Rejected"
)

// InternshipStatuses lists the funnel stages in pipeline order.
var InternshipStatuses = []InternshipStatus{
	InternshipApplied,
	InternshipShortlisted,
	InternshipInterview,
	InternshipOffer,
	InternshipRejected,
}

// Internship is one internship application. It has no due date and is
// never considered overdue.
type Internship struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	Company         string           `json:"company"`
	Role            string           `json:"role"`
	Platform        string           `json:"platform,omitempty"`
	ApplicationDate time.Time        `json:"applicationDate"`
	Status          InternshipStatus `json:"status"`
	InterviewDate   *time.Time       `json:"interviewDate,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}
