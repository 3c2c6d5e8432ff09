package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/export"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// RenderHandler handles sheet generation jobs and their downloads
type RenderHandler struct {
	generator  *sheets.Generator
	store      templates.Store
	jobManager *JobManager
}

// NewRenderHandler creates a new render handler
func NewRenderHandler(gen *sheets.Generator, store templates.Store, jm *JobManager) *RenderHandler {
	return &RenderHandler{
		generator:  gen,
		store:      store,
		jobManager: jm,
	}
}

// RenderRequest selects a saved template or carries one inline
type RenderRequest struct {
	TemplateID string            `json:"template_id"`
	Template   *templates.Config `json:"template"`
}

// Start validates the layout and starts a new render job
func (h *RenderHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var cfg templates.Config
	switch {
	case req.TemplateID != "":
		saved, err := h.store.Get(r.Context(), req.TemplateID)
		if errors.Is(err, templates.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load template: %v", err))
			return
		}
		cfg = saved
	case req.Template != nil:
		cfg = *req.Template
	default:
		respondError(w, http.StatusBadRequest, "template_id or template is required")
		return
	}

	// Reject impossible layouts before any image is fetched.
	params, err := cfg.Params()
	if err != nil {
		respondConfigError(w, err)
		return
	}
	if _, err := layout.Calculate(params); err != nil {
		respondConfigError(w, err)
		return
	}
	if len(cfg.Items) == 0 {
		respondConfigError(w, sheets.ErrNoItems)
		return
	}

	job := h.jobManager.CreateJob(&RenderJob{RenderJobView: RenderJobView{
		ID:           uuid.New().String(),
		TemplateID:   cfg.ID,
		TemplateName: cfg.Name,
		TemplateType: string(cfg.TemplateType),
		PageSize:     params.PageSize.Key,
		ItemCount:    len(cfg.Items),
	}})

	go h.runRenderJob(job, cfg)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(JobStatusPending),
	})
}

// List returns all known render jobs
func (h *RenderHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobManager.ListJobs()
	out := make([]RenderJobView, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, job.Snapshot())
	}
	respondJSON(w, http.StatusOK, out)
}

// Status returns the status of a render job
func (h *RenderHandler) Status(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// Events streams job events via SSE
func (h *RenderHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			job := h.jobManager.GetJob(id)
			if job == nil {
				return nil
			}
			return job
		},
		func(job SSEJob) any {
			return job.(*RenderJob).Snapshot()
		},
	)
}

// Cancel cancels a running render job
func (h *RenderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.lookupJob(w, r)
	if job == nil {
		return
	}

	switch job.GetStatus() {
	case JobStatusCompleted, JobStatusFailed:
		respondError(w, http.StatusConflict, "job already finished")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// Page serves one rendered page as PNG. Pages are numbered from 1.
func (h *RenderHandler) Page(w http.ResponseWriter, r *http.Request) {
	res := h.completedResult(w, r)
	if res == nil {
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 || n > len(res.Pages) {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}

	var buf bytes.Buffer
	if err := export.EncodePNG(&buf, res.Pages[n-1].Image); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := export.PageFileName(res.ListName(), string(res.Config.TemplateType), n-1)
	writeDownload(w, "image/png", name, false, buf.Bytes())
}

// PDF serves all pages as one PDF at the physical page size
func (h *RenderHandler) PDF(w http.ResponseWriter, r *http.Request) {
	res := h.completedResult(w, r)
	if res == nil {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, res.Images(), res.Grid.Params.PageSize); err != nil {
		log.Printf("WARNING: PDF export for job %s: %v", sanitizeForLog(chi.URLParam(r, "jobId")), err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := export.PDFFileName(res.ListName(), string(res.Config.TemplateType), len(res.Pages))
	writeDownload(w, "application/pdf", name, true, buf.Bytes())
}

// Zip serves all pages as PNG files in one archive
func (h *RenderHandler) Zip(w http.ResponseWriter, r *http.Request) {
	res := h.completedResult(w, r)
	if res == nil {
		return
	}

	list := res.ListName()
	tt := string(res.Config.TemplateType)
	var buf bytes.Buffer
	if err := export.WriteZip(&buf, list, tt, res.Images()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeDownload(w, "application/zip", export.ZipFileName(list, tt), true, buf.Bytes())
}

func (h *RenderHandler) lookupJob(w http.ResponseWriter, r *http.Request) *RenderJob {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return nil
	}

	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return nil
	}
	return job
}

// completedResult returns the pages of a finished job or writes an error.
func (h *RenderHandler) completedResult(w http.ResponseWriter, r *http.Request) *sheets.Result {
	job := h.lookupJob(w, r)
	if job == nil {
		return nil
	}
	res := job.Result()
	if res == nil {
		respondError(w, http.StatusConflict, fmt.Sprintf("job is %s, pages are not available", job.GetStatus()))
		return nil
	}
	return res
}

func writeDownload(w http.ResponseWriter, contentType, name string, attachment bool, data []byte) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// runRenderJob runs the render job in the background
func (h *RenderHandler) runRenderJob(job *RenderJob, cfg templates.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.RenderJobTimeout)
	job.setCancel(cancel)
	defer cancel()

	job.mu.Lock()
	if job.Status == JobStatusCancelled {
		job.mu.Unlock()
		return
	}
	job.Status = JobStatusRunning
	job.mu.Unlock()
	job.SendEvent(JobEvent{Type: "started", Message: "Render job started"})

	res, err := h.generator.Generate(ctx, cfg, sheets.Options{
		OnProgress: func(p sheets.ProgressInfo) {
			job.mu.Lock()
			job.Phase = p.Phase
			job.Progress = p.Percent
			if p.Message != "" {
				job.Message = p.Message
			}
			job.mu.Unlock()
			job.SendEvent(JobEvent{Type: "progress", Message: p.Message, Data: p})
		},
	})
	if err != nil {
		if job.GetStatus() == JobStatusCancelled {
			return
		}
		h.failJob(job, err.Error())
		return
	}

	job.mu.Lock()
	if job.Status == JobStatusCancelled {
		job.mu.Unlock()
		return
	}
	now := time.Now()
	job.result = res
	job.Status = JobStatusCompleted
	job.Progress = 100
	job.TotalPages = len(res.Pages)
	job.Warnings = res.Warnings
	job.CompletedAt = &now
	job.mu.Unlock()

	job.SendEvent(JobEvent{Type: "completed", Message: fmt.Sprintf("Generated %d pages", len(res.Pages)), Data: job.Snapshot()})
}

func (h *RenderHandler) failJob(job *RenderJob, message string) {
	job.mu.Lock()
	now := time.Now()
	job.Status = JobStatusFailed
	job.Error = message
	job.CompletedAt = &now
	job.mu.Unlock()

	log.Printf("WARNING: render job %s failed: %s", job.ID, sanitizeForLog(message))
	job.SendEvent(JobEvent{Type: "job_error", Message: message})
}
