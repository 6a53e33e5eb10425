package repository

import (
	"context"
	"errors"

	"github.com/forgo/jobs/api/internal/database"
	"github.com/forgo/jobs/api/internal/model"
)

// JobRepository handles job data access. Every read and write is filtered
// by owner inside the query, so a job owned by someone else looks absent.
type JobRepository struct {
	db database.Database
}

// NewJobRepository creates a new job repository
func NewJobRepository(db database.Database) *JobRepository {
	return &JobRepository{db: db}
}

// ListByOwner returns the owner's jobs, oldest first
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error) {
	owner, ok := recordID("user", ownerID)
	if !ok {
		return []*model.Job{}, nil
	}

	query := `SELECT * FROM job WHERE owner = type::record($owner) ORDER BY created_on ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"owner": owner})
	if err != nil {
		return nil, err
	}

	records := database.Records(results, 0)
	jobs := make([]*model.Job, 0, len(records))
	for _, rec := range records {
		job, err := parseJobResult(rec)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// GetForOwner returns the job only when it belongs to ownerID. Returns nil, nil otherwise.
func (r *JobRepository) GetForOwner(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	vars, ok := ownedVars(ownerID, jobID)
	if !ok {
		return nil, nil
	}
	query := `SELECT * FROM job WHERE id = type::record($id) AND owner = type::record($owner) LIMIT 1`
	return r.one(ctx, query, vars)
}

// Create inserts the job and fills in ID and timestamps
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	owner, ok := recordID("user", job.Owner)
	if !ok {
		return errors.New("job owner is not a user id")
	}

	query := `
		CREATE job CONTENT {
			title: $title,
			company: $company,
			status: $status,
			owner: type::record($owner),
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":   job.Title,
		"company": job.Company,
		"status":  string(job.Status),
		"owner":   owner,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}
	created, err := parseJobResult(result)
	if err != nil {
		return err
	}

	job.ID = created.ID
	job.Owner = created.Owner
	job.CreatedOn = created.CreatedOn
	job.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateForOwner merges the given fields into the owner's job and returns
// the stored result. Returns nil, nil when the job is absent or not owned.
func (r *JobRepository) UpdateForOwner(ctx context.Context, ownerID, jobID string, fields map[string]interface{}) (*model.Job, error) {
	vars, ok := ownedVars(ownerID, jobID)
	if !ok {
		return nil, nil
	}

	patch := make(map[string]interface{}, len(fields))
	for _, key := range []string{"title", "company", "status"} {
		if v, ok := fields[key]; ok {
			patch[key] = v
		}
	}
	vars["patch"] = patch

	query := `
		UPDATE job MERGE $patch
		WHERE id = type::record($id) AND owner = type::record($owner)
		RETURN AFTER
	`
	return r.one(ctx, query, vars)
}

// DeleteForOwner removes the owner's job. found is false when nothing matched.
func (r *JobRepository) DeleteForOwner(ctx context.Context, ownerID, jobID string) (bool, error) {
	vars, ok := ownedVars(ownerID, jobID)
	if !ok {
		return false, nil
	}

	query := `DELETE job WHERE id = type::record($id) AND owner = type::record($owner) RETURN BEFORE`
	job, err := r.one(ctx, query, vars)
	if err != nil {
		return false, err
	}
	return job != nil, nil
}

func (r *JobRepository) one(ctx context.Context, query string, vars map[string]interface{}) (*model.Job, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	job, err := parseJobResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

// ownedVars builds the $id/$owner pair, rejecting ids that cannot name a job
func ownedVars(ownerID, jobID string) (map[string]interface{}, bool) {
	id, ok := recordID("job", jobID)
	if !ok {
		return nil, false
	}
	owner, ok := recordID("user", ownerID)
	if !ok {
		return nil, false
	}
	return map[string]interface{}{"id": id, "owner": owner}, true
}

func parseJobResult(result interface{}) (*model.Job, error) {
	data, err := recordMap(result)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		ID:        convertSurrealID(data["id"]),
		Title:     getString(data, "title"),
		Company:   getString(data, "company"),
		Status:    model.JobStatus(getString(data, "status")),
		Owner:     convertSurrealID(data["owner"]),
		CreatedOn: parseTime(data["created_on"]),
		UpdatedOn: parseTime(data["updated_on"]),
	}
	if job.ID == "" {
		return nil, errors.New("job record has no id")
	}
	return job, nil
}
