package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/forgo/jobs/api/internal/model"
)

// JobRepository defines the interface for job storage.
// Every method is scoped to an owner; a job owned by someone else is absent.
type JobRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error)
	GetForOwner(ctx context.Context, ownerID, jobID string) (*model.Job, error)
	Create(ctx context.Context, job *model.Job) error
	UpdateForOwner(ctx context.Context, ownerID, jobID string, fields map[string]interface{}) (*model.Job, error)
	DeleteForOwner(ctx context.Context, ownerID, jobID string) (bool, error)
}

// JobService handles job tracking business logic
type JobService struct {
	jobRepo JobRepository
}

// JobServiceConfig holds configuration for the job service
type JobServiceConfig struct {
	JobRepo JobRepository
}

// NewJobService creates a new job service
func NewJobService(cfg JobServiceConfig) *JobService {
	return &JobService{jobRepo: cfg.JobRepo}
}

// CreateJobInput is the caller-controlled part of a new job
type CreateJobInput struct {
	Title   string
	Company string
	Status  model.JobStatus
}

// UpdateJobInput holds the fields to change. Nil means unchanged.
type UpdateJobInput struct {
	Title   *string
	Company *string
	Status  *model.JobStatus
}

// List returns all jobs owned by the user, oldest first
func (s *JobService) List(ctx context.Context, userID string) ([]*model.Job, error) {
	return s.jobRepo.ListByOwner(ctx, userID)
}

// Get returns one job owned by the user
func (s *JobService) Get(ctx context.Context, userID, jobID string) (*model.Job, error) {
	job, err := s.jobRepo.GetForOwner(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Create stores a new job owned by the user. Status defaults to pending.
func (s *JobService) Create(ctx context.Context, userID string, input CreateJobInput) (*model.Job, error) {
	title := strings.TrimSpace(input.Title)
	company := strings.TrimSpace(input.Company)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateCompany(company); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.JobStatusPending
	}
	if !status.IsValid() {
		return nil, ErrInvalidJobStatus
	}

	job := &model.Job{
		Title:   title,
		Company: company,
		Status:  status,
		Owner:   userID,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Update changes the given fields of a job owned by the user.
// The id and owner of a job never change.
func (s *JobService) Update(ctx context.Context, userID, jobID string, input UpdateJobInput) (*model.Job, error) {
	fields := make(map[string]interface{}, 3)

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if input.Company != nil {
		company := strings.TrimSpace(*input.Company)
		if err := validateCompany(company); err != nil {
			return nil, err
		}
		fields["company"] = company
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidJobStatus
		}
		fields["status"] = string(*input.Status)
	}
	if len(fields) == 0 {
		return nil, ErrNoJobFields
	}

	job, err := s.jobRepo.UpdateForOwner(ctx, userID, jobID, fields)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Remove deletes a job owned by the user
func (s *JobService) Remove(ctx context.Context, userID, jobID string) error {
	found, err := s.jobRepo.DeleteForOwner(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if !found {
		return ErrJobNotFound
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrJobTitleRequired
	}
	if utf8.RuneCountInString(title) > model.MaxJobTitleLength {
		return ErrJobTitleTooLong
	}
	return nil
}

func validateCompany(company string) error {
	if company == "" {
		return ErrJobCompanyRequired
	}
	if utf8.RuneCountInString(company) > model.MaxJobCompanyLength {
		return ErrJobCompanyTooLong
	}
	return nil
}
