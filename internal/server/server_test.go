package server

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/forgo/jobs/api/internal/middleware"
	"github.com/forgo/jobs/api/internal/model"
	"github.com/forgo/jobs/api/internal/service"
	"github.com/forgo/jobs/api/internal/testing/helpers"
	"github.com/forgo/jobs/api/internal/testing/memstore"
	"github.com/forgo/jobs/api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const jobsPath = APIPrefix + "/jobs"

type testServer struct {
	handler http.Handler
	store   *memstore.Store
}

func newTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()

	store := memstore.New()
	tokens := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwt.NewTestService("server-test-secret-server-test-secret", "jobs-test", time.Hour, nil),
	})
	auth := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     store.Users(),
		TokenService: tokens,
		BcryptCost:   bcrypt.MinCost,
	})
	jobs := service.NewJobService(service.JobServiceConfig{JobRepo: store.Jobs()})

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: 1000, Window: time.Minute})
	t.Cleanup(limiter.Stop)
	idempotency := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{TTL: time.Hour})
	t.Cleanup(idempotency.Stop)

	o := Options{
		Auth:           auth,
		Jobs:           jobs,
		DB:             store,
		Limiter:        limiter,
		Idempotency:    idempotency,
		AllowedOrigins: []string{"*"},
		TrustProxy:     true,
		IsDevelopment:  true,
	}
	for _, fn := range opts {
		fn(&o)
	}

	return &testServer{handler: New(o), store: store}
}

// register creates an account and returns its token
func (s *testServer) register(t *testing.T, email, password, name string) string {
	t.Helper()

	rr := helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/register").
		WithBody(map[string]string{"email": email, "password": password, "name": name}).
		Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusCreated)

	var resp model.AuthResponse
	helpers.DecodeResponse(t, rr, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) createJob(t *testing.T, token, title, company string) *model.Job {
	t.Helper()

	rr := helpers.NewRequest(t, http.MethodPost, jobsPath).
		WithToken(token).
		WithBody(map[string]string{"title": title, "company": company}).
		Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusCreated)

	var resp model.JobResponse
	helpers.DecodeResponse(t, rr, &resp)
	require.NotNil(t, resp.Job)
	return resp.Job
}

// ============================================================================
// End-to-end flow
// ============================================================================

func TestScenario_RegisterCreateUpdateList(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	token := s.register(t, "a@x.com", "pw123", "Ann")

	job := s.createJob(t, token, "Engineer", "Acme")
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)

	rr := helpers.NewRequest(t, http.MethodPatch, jobsPath+"/"+job.ID).
		WithToken(token).
		WithBody(map[string]string{"status": "interview"}).
		Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var updated model.JobResponse
	helpers.DecodeResponse(t, rr, &updated)
	assert.Equal(t, model.JobStatusInterview, updated.Job.Status)
	assert.Equal(t, job.ID, updated.Job.ID)
	assert.Equal(t, job.Owner, updated.Job.Owner)

	rr = helpers.NewRequest(t, http.MethodGet, jobsPath).WithToken(token).Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var list model.JobListResponse
	helpers.DecodeResponse(t, rr, &list)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, job.ID, list.Jobs[0].ID)
	assert.Equal(t, model.JobStatusInterview, list.Jobs[0].Status)
}

func TestLogin_IssuesWorkingToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123", "Ann")

	rr := helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/login").
		WithBody(map[string]string{"email": "A@X.com", "password": "pw123"}).
		Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var resp model.AuthResponse
	helpers.DecodeResponse(t, rr, &resp)
	assert.Equal(t, "Ann", resp.User.Name)

	rr = helpers.NewRequest(t, http.MethodGet, jobsPath).WithToken(resp.Token).Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
}

func TestAuthErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.register(t, "a@x.com", "pw123", "Ann")

	rr := helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/register").
		WithBody(map[string]string{"email": "a@x.com", "password": "pw123", "name": "Other"}).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusBadRequest, "Email already in use")

	rr = helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/login").
		WithBody(map[string]string{"email": "a@x.com", "password": "wrong-pass"}).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusUnauthorized, "Invalid credentials")

	rr = helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/login").
		WithBody(map[string]string{"email": "nobody@x.com", "password": "pw123"}).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusUnauthorized, "Invalid credentials")

	rr = helpers.NewRequest(t, http.MethodPost, APIPrefix+"/auth/login").
		WithBody(map[string]string{"email": "a@x.com"}).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusBadRequest, "Please provide email and password")
}

func TestJobs_RequireValidToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, token := range []string{"", "garbage"} {
		b := helpers.NewRequest(t, http.MethodGet, jobsPath)
		if token != "" {
			b.WithToken(token)
		}
		helpers.AssertProblem(t, b.Do(s.handler), http.StatusUnauthorized, "Authentication invalid")
	}

	// Rejected before the body is looked at
	rr := helpers.NewRequest(t, http.MethodPost, jobsPath).WithRawBody(`{`).Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusUnauthorized)
	assert.Zero(t, s.store.JobCount())
}

func TestJobs_OtherOwnersJobLooksMissing(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	ann := s.register(t, "ann@x.com", "pw123", "Ann")
	bob := s.register(t, "bob@x.com", "pw123", "Bob")
	job := s.createJob(t, ann, "Engineer", "Acme")

	missing := helpers.NewRequest(t, http.MethodGet, jobsPath+"/job:does-not-exist").WithToken(bob).Do(s.handler)
	helpers.AssertProblem(t, missing, http.StatusNotFound, "Job not found")

	requests := []*helpers.RequestBuilder{
		helpers.NewRequest(t, http.MethodGet, jobsPath+"/"+job.ID),
		helpers.NewRequest(t, http.MethodPatch, jobsPath+"/"+job.ID).WithBody(map[string]string{"status": "declined"}),
		helpers.NewRequest(t, http.MethodDelete, jobsPath+"/"+job.ID),
	}
	for _, b := range requests {
		rr := b.WithToken(bob).Do(s.handler)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, missing.Body.String(), rr.Body.String())
	}

	// Bob's list is empty and Ann's job is untouched
	rr := helpers.NewRequest(t, http.MethodGet, jobsPath).WithToken(bob).Do(s.handler)
	assert.JSONEq(t, `{"jobs":[],"count":0}`, rr.Body.String())

	rr = helpers.NewRequest(t, http.MethodGet, jobsPath+"/"+job.ID).WithToken(ann).Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	var got model.JobResponse
	helpers.DecodeResponse(t, rr, &got)
	assert.Equal(t, model.JobStatusPending, got.Job.Status)
}

func TestJobs_RemoveTwice(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	token := s.register(t, "a@x.com", "pw123", "Ann")
	job := s.createJob(t, token, "Engineer", "Acme")

	rr := helpers.NewRequest(t, http.MethodDelete, jobsPath+"/"+job.ID).WithToken(token).Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, `{}`, rr.Body.String())

	rr = helpers.NewRequest(t, http.MethodDelete, jobsPath+"/"+job.ID).WithToken(token).Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusNotFound, "Job not found")
}

func TestJobs_UpdateIgnoresIdentityFields(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	token := s.register(t, "a@x.com", "pw123", "Ann")
	job := s.createJob(t, token, "Engineer", "Acme")

	rr := helpers.NewRequest(t, http.MethodPatch, jobsPath+"/"+job.ID).
		WithToken(token).
		WithBody(map[string]string{"company": "Globex", "owner": "user:someone-else", "id": "job:other"}).
		Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)

	var got model.JobResponse
	helpers.DecodeResponse(t, rr, &got)
	assert.Equal(t, job.ID, got.Job.ID)
	assert.Equal(t, job.Owner, got.Job.Owner)
	assert.Equal(t, "Globex", got.Job.Company)
}

func TestJobs_ValidationErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw123", "Ann")
	job := s.createJob(t, token, "Engineer", "Acme")

	rr := helpers.NewRequest(t, http.MethodPost, jobsPath).
		WithToken(token).
		WithBody(map[string]string{"title": "Engineer", "status": "hired"}).
		Do(s.handler)
	p := helpers.AssertProblem(t, rr, http.StatusBadRequest, "")
	assert.Len(t, p.Errors, 2)

	rr = helpers.NewRequest(t, http.MethodPatch, jobsPath+"/"+job.ID).
		WithToken(token).
		WithBody(map[string]string{"title": "  "}).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusBadRequest, "")

	rr = helpers.NewRequest(t, http.MethodPatch, jobsPath+"/"+job.ID).
		WithToken(token).
		WithRawBody(`{}`).
		Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusBadRequest, service.ErrNoJobFields.Message)
}

func TestJobs_StoreFailure_IsOpaque(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw123", "Ann")

	s.store.SetErr(errors.New("surreal: dial tcp 10.0.0.5:8000: connection refused"))

	rr := helpers.NewRequest(t, http.MethodGet, jobsPath).WithToken(token).Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusInternalServerError, "Something went wrong, try again later")
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

// ============================================================================
// Pipeline
// ============================================================================

func TestCreate_StripsMarkup(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw123", "Ann")

	job := s.createJob(t, token, `<script>alert("x")</script><b>Engineer</b>`, "AT&T")
	assert.Equal(t, "Engineer", job.Title)
	assert.Equal(t, "AT&T", job.Company)
}

func TestCreate_IdempotencyKey_CreatesOnce(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := s.register(t, "a@x.com", "pw123", "Ann")

	send := func() *model.Job {
		rr := helpers.NewRequest(t, http.MethodPost, jobsPath).
			WithToken(token).
			WithHeader("Idempotency-Key", "create-engineer").
			WithBody(map[string]string{"title": "Engineer", "company": "Acme"}).
			Do(s.handler)
		helpers.AssertStatus(t, rr, http.StatusCreated)
		var resp model.JobResponse
		helpers.DecodeResponse(t, rr, &resp)
		return resp.Job
	}

	first := send()
	second := send()

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, s.store.JobCount())
}

func TestRateLimit_AppliesToEveryRoute(t *testing.T) {
	t.Parallel()

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: 2, Window: time.Minute})
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, func(o *Options) { o.Limiter = limiter })

	for i := 0; i < 2; i++ {
		rr := helpers.NewRequest(t, http.MethodGet, "/health").WithHeader("X-Forwarded-For", "203.0.113.7").Do(s.handler)
		helpers.AssertStatus(t, rr, http.StatusOK)
	}

	rr := helpers.NewRequest(t, http.MethodGet, jobsPath).WithHeader("X-Forwarded-For", "203.0.113.7").Do(s.handler)
	helpers.AssertProblem(t, rr, http.StatusTooManyRequests, "")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	rr = helpers.NewRequest(t, http.MethodGet, "/health").WithHeader("X-Forwarded-For", "203.0.113.8").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
}

func TestRateLimit_RotatingForwardedPrefix_SharesWindow(t *testing.T) {
	t.Parallel()

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{Rate: 2, Window: time.Minute})
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, func(o *Options) { o.Limiter = limiter })

	denied := 0
	for i := 0; i < 5; i++ {
		forwarded := fmt.Sprintf("198.18.0.%d, 203.0.113.7", i)
		rr := helpers.NewRequest(t, http.MethodGet, "/health").WithHeader("X-Forwarded-For", forwarded).Do(s.handler)
		if rr.Code == http.StatusTooManyRequests {
			denied++
		}
	}
	assert.Equal(t, 3, denied)
}

// panickingJobs fails every call the way a nil dereference deep in a
// service would
type panickingJobs struct{}

func (panickingJobs) List(context.Context, string) ([]*model.Job, error) { panic("list exploded") }
func (panickingJobs) Get(context.Context, string, string) (*model.Job, error) {
	panic("get exploded")
}
func (panickingJobs) Create(context.Context, string, service.CreateJobInput) (*model.Job, error) {
	panic("create exploded")
}
func (panickingJobs) Update(context.Context, string, string, service.UpdateJobInput) (*model.Job, error) {
	panic("update exploded")
}
func (panickingJobs) Remove(context.Context, string, string) error { panic("remove exploded") }

func TestPanic_WithGzip_ReturnsProblem(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(o *Options) { o.Jobs = panickingJobs{} })
	token := s.register(t, "a@x.com", "pw123", "Ann")

	rr := helpers.NewRequest(t, http.MethodGet, jobsPath).
		WithToken(token).
		WithHeader("Accept-Encoding", "gzip").
		Do(s.handler)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	reader, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "exploded")

	var problem model.ProblemDetails
	require.NoError(t, json.Unmarshal(body, &problem))
	assert.Equal(t, "Something went wrong, try again later", problem.Message)
}

func TestResponses_CarryPipelineHeaders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rr := helpers.NewRequest(t, http.MethodGet, jobsPath).Do(s.handler)

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "1000", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

// ============================================================================
// Routing
// ============================================================================

func TestRoutes_LandingHealthAndDocs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rr := helpers.NewRequest(t, http.MethodGet, "/").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "<h1>Jobs API</h1>")

	rr = helpers.NewRequest(t, http.MethodGet, "/health").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rr.Body.String())

	rr = helpers.NewRequest(t, http.MethodGet, "/api-docs/doc.json").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), `"title": "Jobs API"`)
	assert.Contains(t, rr.Body.String(), `"/jobs/{id}"`)
	assert.Contains(t, rr.Body.String(), "Every job belongs to the user who created it.")

	rr = helpers.NewRequest(t, http.MethodGet, "/api-docs").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusMovedPermanently)
	assert.Equal(t, "/api-docs/index.html", rr.Header().Get("Location"))

	rr = helpers.NewRequest(t, http.MethodGet, "/api-docs/index.html").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}

func TestRoutes_HealthDegraded(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.store.SetErr(context.DeadlineExceeded)

	rr := helpers.NewRequest(t, http.MethodGet, "/health").Do(s.handler)
	helpers.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestRoutes_UnknownAndWrongMethod(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, path := range []string{"/nope", APIPrefix + "/users", jobsPath + "/a/b", "/api/v2/jobs"} {
		rr := helpers.NewRequest(t, http.MethodGet, path).Do(s.handler)
		helpers.AssertProblem(t, rr, http.StatusNotFound, "Route does not exist")
	}

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodPut, jobsPath, "GET, POST"},
		{http.MethodPost, jobsPath + "/job:abc", "GET, PATCH, DELETE"},
		{http.MethodGet, APIPrefix + "/auth/login", "POST"},
		{http.MethodDelete, "/health", "GET"},
	}
	for _, tt := range tests {
		rr := helpers.NewRequest(t, tt.method, tt.path).Do(s.handler)
		helpers.AssertProblem(t, rr, http.StatusMethodNotAllowed, "")
		assert.Equal(t, tt.allow, rr.Header().Get("Allow"), tt.method+" "+tt.path)
		assert.True(t, strings.Contains(rr.Body.String(), tt.method))
	}
}
