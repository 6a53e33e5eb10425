package handler

import (
	"context"
	"net/http"

	"github.com/forgo/jobs/api/internal/middleware"
	"github.com/forgo/jobs/api/internal/model"
	"github.com/forgo/jobs/api/internal/service"
)

// JobService is the part of service.JobService the handler needs
type JobService interface {
	List(ctx context.Context, userID string) ([]*model.Job, error)
	Get(ctx context.Context, userID, jobID string) (*model.Job, error)
	Create(ctx context.Context, userID string, input service.CreateJobInput) (*model.Job, error)
	Update(ctx context.Context, userID, jobID string, input service.UpdateJobInput) (*model.Job, error)
	Remove(ctx context.Context, userID, jobID string) error
}

// JobHandler handles job endpoints. Every route requires authentication.
type JobHandler struct {
	jobService JobService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// List godoc
// @Summary      List the caller's jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.JobListResponse
// @Failure      401  {object}  model.ProblemDetails
// @Failure      500  {object}  model.ProblemDetails
// @Router       /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	jobs, err := h.jobService.List(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, model.JobListResponse{Jobs: jobs, Count: len(jobs)})
}

// Get godoc
// @Summary      Get one of the caller's jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  model.JobResponse
// @Failure      401  {object}  model.ProblemDetails
// @Failure      404  {object}  model.ProblemDetails
// @Failure      500  {object}  model.ProblemDetails
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, model.JobResponse{Job: job})
}

// Create godoc
// @Summary      Create a job owned by the caller
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                  false  "Replay protection key"
// @Param        body             body      model.CreateJobRequest  true   "New job"
// @Success      201              {object}  model.JobResponse
// @Failure      400              {object}  model.ProblemDetails
// @Failure      401              {object}  model.ProblemDetails
// @Failure      409              {object}  model.ProblemDetails
// @Failure      500              {object}  model.ProblemDetails
// @Router       /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError("", errs))
		return
	}

	// req.Owner is ignored; the caller always owns what they create
	job, err := h.jobService.Create(r.Context(), userID, service.CreateJobInput{
		Title:   req.Title,
		Company: req.Company,
		Status:  req.Status,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, model.JobResponse{Job: job})
}

// Update godoc
// @Summary      Update one of the caller's jobs
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Job ID"
// @Param        body  body      model.UpdateJobRequest  true  "Fields to change"
// @Success      200   {object}  model.JobResponse
// @Failure      400   {object}  model.ProblemDetails
// @Failure      401   {object}  model.ProblemDetails
// @Failure      404   {object}  model.ProblemDetails
// @Failure      500   {object}  model.ProblemDetails
// @Router       /jobs/{id} [patch]
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateJobRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Normalize()
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError("", errs))
		return
	}

	job, err := h.jobService.Update(r.Context(), userID, r.PathValue("id"), service.UpdateJobInput{
		Title:   req.Title,
		Company: req.Company,
		Status:  req.Status,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, model.JobResponse{Job: job})
}

// Delete godoc
// @Summary      Delete one of the caller's jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  model.ProblemDetails
// @Failure      404  {object}  model.ProblemDetails
// @Failure      500  {object}  model.ProblemDetails
// @Router       /jobs/{id} [delete]
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.jobService.Remove(r.Context(), userID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, struct{}{})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError(""))
		return "", false
	}
	return userID, true
}
