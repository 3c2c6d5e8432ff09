package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/render"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// RenderJob represents an async sheet generation job. Rendered pages stay in
// memory so PNG, ZIP and PDF downloads do not render again.
type RenderJob struct {
	EventBroadcaster
	RenderJobView

	result *sheets.Result
}

// RenderJobView is the JSON form of a RenderJob.
type RenderJobView struct {
	ID           string           `json:"id"`
	TemplateID   string           `json:"template_id,omitempty"`
	TemplateName string           `json:"template_name"`
	TemplateType string           `json:"template_type"`
	PageSize     string           `json:"page_size"`
	ItemCount    int              `json:"item_count"`
	Status       JobStatus        `json:"status"`
	Phase        string           `json:"phase,omitempty"`
	Progress     int              `json:"progress"`
	Message      string           `json:"message,omitempty"`
	TotalPages   int              `json:"total_pages"`
	Warnings     []render.Warning `json:"warnings,omitempty"`
	Error        string           `json:"error,omitempty"`
	StartedAt    time.Time        `json:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// GetStatus returns the current job status (implements SSEJob).
func (j *RenderJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Result returns the generated pages of a completed job.
func (j *RenderJob) Result() *sheets.Result {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.Status != JobStatusCompleted {
		return nil
	}
	return j.result
}

// Snapshot returns a copy of the job fields safe to encode while the job runs.
func (j *RenderJob) Snapshot() RenderJobView {
	j.mu.RLock()
	defer j.mu.RUnlock()
	v := j.RenderJobView
	v.Warnings = append([]render.Warning(nil), j.Warnings...)
	return v
}

// Cancel cancels the render job.
func (j *RenderJob) Cancel() {
	j.mu.Lock()
	if isJobTerminal(j.Status) {
		j.mu.Unlock()
		return
	}
	j.Status = JobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
	j.mu.Unlock()
	j.EventBroadcaster.Cancel()
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	b.mu.RLock()
	cancel := b.cancel
	b.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Job cancelled by user"})
}

func (b *EventBroadcaster) setCancel(cancel context.CancelFunc) {
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
}

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*RenderJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*RenderJob),
	}
}

// CreateJob registers a pending job.
func (m *JobManager) CreateJob(job *RenderJob) *RenderJob {
	job.Status = JobStatusPending
	job.StartedAt = time.Now()

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *RenderJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*RenderJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*RenderJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Prune drops finished jobs older than maxAge so their pages can be collected.
func (m *JobManager) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, job := range m.jobs {
		job.mu.RLock()
		expired := isJobTerminal(job.Status) && job.CompletedAt != nil && job.CompletedAt.Before(cutoff)
		job.mu.RUnlock()
		if expired {
			delete(m.jobs, id)
			n++
		}
	}
	return n
}
