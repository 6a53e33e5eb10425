package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// JobStatus is the stage of an application
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending" // Default
	JobStatusInterview JobStatus = "interview"
	JobStatusDeclined  JobStatus = "declined"
)

// Field limits
const (
	MaxJobTitleLength   = 100
	MaxJobCompanyLength = 50
)

// IsValid returns true if the status is one of the known values
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	default:
		return false
	}
}

// JobStatuses lists every valid status in display order
func JobStatuses() []JobStatus {
	return []JobStatus{JobStatusPending, JobStatusInterview, JobStatusDeclined}
}

// Job is a job application tracked by its owner
type Job struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Status    JobStatus `json:"status"`
	Owner     string    `json:"owner"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// CreateJobRequest is the body of POST /jobs. Owner is accepted and ignored;
// the owner is always the authenticated user.
type CreateJobRequest struct {
	Title   string    `json:"title"`
	Company string    `json:"company"`
	Status  JobStatus `json:"status,omitempty"` // defaults to "pending"
	Owner   string    `json:"owner,omitempty" swaggerignore:"true"`
}

// Normalize trims text fields
func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Status = JobStatus(strings.TrimSpace(string(r.Status)))
}

// Validate checks required fields and the status value
func (r *CreateJobRequest) Validate() []FieldError {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, MaxJobTitleLength)),
		validation.Field(&r.Company, validation.Required, validation.RuneLength(1, MaxJobCompanyLength)),
		validation.Field(&r.Status, statusRule()),
	))
}

// UpdateJobRequest is the body of PATCH /jobs/{id}. ID and Owner are
// accepted and ignored; they never change.
type UpdateJobRequest struct {
	Title   *string    `json:"title,omitempty"`
	Company *string    `json:"company,omitempty"`
	Status  *JobStatus `json:"status,omitempty"`
	ID      *string    `json:"id,omitempty" swaggerignore:"true"`
	Owner   *string    `json:"owner,omitempty" swaggerignore:"true"`
}

// Normalize trims text fields that are present
func (r *UpdateJobRequest) Normalize() {
	if r.Title != nil {
		v := strings.TrimSpace(*r.Title)
		r.Title = &v
	}
	if r.Company != nil {
		v := strings.TrimSpace(*r.Company)
		r.Company = &v
	}
	if r.Status != nil {
		v := JobStatus(strings.TrimSpace(string(*r.Status)))
		r.Status = &v
	}
}

// Validate checks the fields that are present. Present text fields may not be empty.
func (r *UpdateJobRequest) Validate() []FieldError {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, MaxJobTitleLength)),
		validation.Field(&r.Company, validation.NilOrNotEmpty, validation.RuneLength(1, MaxJobCompanyLength)),
		validation.Field(&r.Status, validation.NilOrNotEmpty, statusRule()),
	))
}

// IsEmpty reports whether no mutable field was supplied
func (r *UpdateJobRequest) IsEmpty() bool {
	return r.Title == nil && r.Company == nil && r.Status == nil
}

// JobResponse wraps a single job
type JobResponse struct {
	Job *Job `json:"job"`
}

// JobListResponse wraps the caller's jobs
type JobListResponse struct {
	Jobs  []*Job `json:"jobs"`
	Count int    `json:"count"`
}

func statusRule() validation.Rule {
	return validation.In(JobStatusPending, JobStatusInterview, JobStatusDeclined).
		Error("must be one of pending, interview, declined")
}
