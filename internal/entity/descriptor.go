// internal/entity/descriptor.go

// Package entity layers typed, owner-scoped CRUD (Store) and a cached,
// refetch-after-write session view (Sync) on top of the raw document
// store boundary.
package entity

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"studytrack/internal/models"
	"studytrack/internal/store"
)

// Descriptor carries the per-kind wiring: which collection the kind
// lives in, the default list ordering, which fields the store assigns
// on insert, and the create-payload schema.
type Descriptor[T any] struct {
	Collection       string
	OrderBy          string
	ServerTimestamps []string
	Schema           *gojsonschema.Schema
}

// Assignments orders by creation time, newest first. createdAt is
// store-assigned.
var Assignments = Descriptor[models.Assignment]{
	Collection:       store.CollectionAssignments,
	OrderBy:          "createdAt",
	ServerTimestamps: []string{"createdAt"},
	Schema:           mustSchema(assignmentSchema),
}

// Projects orders by start date, newest first.
var Projects = Descriptor[models.Project]{
	Collection: store.CollectionProjects,
	OrderBy:    "startDate",
	Schema:     mustSchema(projectSchema),
}

// Internships orders by application date, newest first.
var Internships = Descriptor[models.Internship]{
	Collection: store.CollectionInternships,
	OrderBy:    "applicationDate",
	Schema:     mustSchema(internshipSchema),
}

const assignmentSchema = `{
	"type": "object",
	"required": ["title", "subject", "priority", "status"],
	"properties": {
		"title":    {"type": "string", "minLength": 1},
		"subject":  {"type": "string"},
		"priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
		"dueDate":  {"type": "string"},
		"notes":    {"type": "string"},
		"status":   {"type": "string", "enum": ["Pending", "Completed"]}
	}
}`

const projectSchema = `{
	"type": "object",
	"required": ["name", "type", "startDate", "status"],
	"properties": {
		"name":        {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"type":        {"type": "string"},
		"startDate":   {"type": "string"},
		"dueDate":     {"type": "string"},
		"repoLink":    {"type": "string"},
		"notes":       {"type": "string"},
		"status":      {"type": "string", "enum": ["In Progress", "Completed"]}
	}
}`

const internshipSchema = `{
	"type": "object",
	"required": ["company", "role", "applicationDate", "status"],
	"properties": {
		"company":         {"type": "string", "minLength": 1},
		"role":            {"type": "string", "minLength": 1},
		"platform":        {"type": "string"},
		"applicationDate": {"type": "string"},
		"interviewDate":   {"type": "string"},
		"notes":           {"type": "string"},
		"status":          {"type": "string", "enum": ["Applied", "Shortlisted", "Interview", "Offer", "Rejected"]}
	}
}`

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("entity: bad schema: %v", err))
	}
	return schema
}

// encode flattens a typed entity into document fields via its JSON
// form. The id never travels inside the payload.
func encode[T any](v T) (store.Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var fields store.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// decode rebuilds a typed entity from a stored document.
func decode[T any](doc store.Document) (T, error) {
	var v T
	merged := store.CloneFields(doc.Fields)
	merged["id"] = doc.ID
	raw, err := json.Marshal(merged)
	if err != nil {
		return v, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return v, nil
}
