// Package memstore provides in-memory user and job repositories for tests.
//
// The repositories follow the same contract as the SurrealDB ones: lookups
// that find nothing return nil, nil and every job operation is scoped to an
// owner, so a job owned by someone else is reported as absent.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forgo/jobs/api/internal/database"
	"github.com/forgo/jobs/api/internal/model"
	"github.com/google/uuid"
)

// Store holds users and jobs behind a single lock
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	jobs  map[string]*model.Job
	seq   int64
	now   func() time.Time

	// Err, when set, is returned by every operation
	Err error
}

// New creates an empty store
func New() *Store {
	return &Store{
		users: make(map[string]*model.User),
		jobs:  make(map[string]*model.Job),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Users returns a user repository backed by the store
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Jobs returns a job repository backed by the store
func (s *Store) Jobs() *JobRepository { return &JobRepository{s: s} }

// Ping reports Err, so health checks can be made to fail
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Err
}

// SetErr makes every following operation fail with err
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// JobCount returns the number of stored jobs across all owners
func (s *Store) JobCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// tick returns a strictly increasing timestamp so ordering by creation is stable
func (s *Store) tick() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq) * time.Microsecond)
}

func normalize(table, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if prefix, key, ok := strings.Cut(id, ":"); ok {
		if prefix != table || key == "" {
			return ""
		}
		return id
	}
	return table + ":" + id
}

// ============================================================================
// Users
// ============================================================================

// UserRepository is an in-memory service.UserRepository
type UserRepository struct {
	s *Store
}

// Create stores a user, enforcing unique emails
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}

	now := r.s.tick()
	user.ID = "user:" + uuid.NewString()
	user.CreatedOn = now
	user.UpdatedOn = now

	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

// GetByID returns a user or nil
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	u, ok := r.s.users[normalize("user", id)]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetByEmail returns a user or nil
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ============================================================================
// Jobs
// ============================================================================

// JobRepository is an in-memory service.JobRepository
type JobRepository struct {
	s *Store
}

// ListByOwner returns the owner's jobs, oldest first
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	owner := normalize("user", ownerID)
	jobs := make([]*model.Job, 0)
	for _, j := range r.s.jobs {
		if j.Owner == owner {
			cp := *j
			jobs = append(jobs, &cp)
		}
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedOn.Before(jobs[k].CreatedOn) })
	return jobs, nil
}

// GetForOwner returns a job or nil when it is missing or owned by someone else
func (r *JobRepository) GetForOwner(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	j := r.owned(ownerID, jobID)
	if j == nil {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

// Create stores a job and fills in its id and timestamps
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	now := r.s.tick()
	job.ID = "job:" + uuid.NewString()
	job.Owner = normalize("user", job.Owner)
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	job.CreatedOn = now
	job.UpdatedOn = now

	stored := *job
	r.s.jobs[job.ID] = &stored
	return nil
}

// UpdateForOwner merges title, company and status into an owned job
func (r *JobRepository) UpdateForOwner(ctx context.Context, ownerID, jobID string, fields map[string]interface{}) (*model.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	j := r.owned(ownerID, jobID)
	if j == nil {
		return nil, nil
	}
	if v, ok := fields["title"].(string); ok {
		j.Title = v
	}
	if v, ok := fields["company"].(string); ok {
		j.Company = v
	}
	if v, ok := fields["status"].(string); ok {
		j.Status = model.JobStatus(v)
	}
	j.UpdatedOn = r.s.tick()

	cp := *j
	return &cp, nil
}

// DeleteForOwner removes an owned job and reports whether it existed
func (r *JobRepository) DeleteForOwner(ctx context.Context, ownerID, jobID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}

	j := r.owned(ownerID, jobID)
	if j == nil {
		return false, nil
	}
	delete(r.s.jobs, j.ID)
	return true, nil
}

// owned must be called with the lock held
func (r *JobRepository) owned(ownerID, jobID string) *model.Job {
	j, ok := r.s.jobs[normalize("job", jobID)]
	if !ok || j.Owner != normalize("user", ownerID) {
		return nil
	}
	return j
}
