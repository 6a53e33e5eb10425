package fixtures

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/jobs/api/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "testpass123"

// UserStore is what the factory needs to persist users
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
}

// JobStore is what the factory needs to persist jobs
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
}

// Factory creates test entities through the repositories
type Factory struct {
	users UserStore
	jobs  JobStore
}

// New creates a new fixture factory
func New(users UserStore, jobs JobStore) *Factory {
	return &Factory{users: users, jobs: jobs}
}

func randomID() string {
	return uuid.NewString()[:8]
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email    string
	Name     string
	Password string
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := randomID()
	o := &UserOpts{
		Email:    fmt.Sprintf("user_%s@test.local", id),
		Name:     "User " + id,
		Password: DefaultPassword,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	hashStr := string(hash)

	user := &model.User{
		Email: model.NormalizeEmail(o.Email),
		Name:  o.Name,
		Hash:  &hashStr,
	}
	if err := f.users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// WithEmail sets the user's email
func WithEmail(email string) func(*UserOpts) {
	return func(o *UserOpts) { o.Email = email }
}

// WithName sets the user's name
func WithName(name string) func(*UserOpts) {
	return func(o *UserOpts) { o.Name = name }
}

// ============================================================================
// Job Fixtures
// ============================================================================

// JobOpts customizes job creation
type JobOpts struct {
	Title   string
	Company string
	Status  model.JobStatus
}

// CreateJob creates a job owned by owner
func (f *Factory) CreateJob(t *testing.T, owner *model.User, opts ...func(*JobOpts)) *model.Job {
	t.Helper()

	o := &JobOpts{
		Title:   "Engineer " + randomID(),
		Company: "Acme",
		Status:  model.JobStatusPending,
	}
	for _, fn := range opts {
		fn(o)
	}

	job := &model.Job{
		Title:   o.Title,
		Company: o.Company,
		Status:  o.Status,
		Owner:   owner.ID,
	}
	if err := f.jobs.Create(ctx(t), job); err != nil {
		t.Fatalf("fixtures: failed to create job: %v", err)
	}
	return job
}

// WithStatus sets the job's status
func WithStatus(status model.JobStatus) func(*JobOpts) {
	return func(o *JobOpts) { o.Status = status }
}

// WithTitle sets the job's title
func WithTitle(title string) func(*JobOpts) {
	return func(o *JobOpts) { o.Title = title }
}
