package handlers

import (
	"context"
	"testing"
	"time"
)

func TestEventBroadcaster_SendEvent(t *testing.T) {
	var b EventBroadcaster
	ch1 := b.AddListener()
	ch2 := b.AddListener()

	b.SendEvent(JobEvent{Type: "progress", Message: "half way"})

	for i, ch := range []chan JobEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Type != "progress" || ev.Message != "half way" {
				t.Errorf("listener %d: unexpected event %+v", i, ev)
			}
		default:
			t.Errorf("listener %d: expected an event", i)
		}
	}

	b.RemoveListener(ch1)
	if _, ok := <-ch1; ok {
		t.Error("expected removed listener channel to be closed")
	}
	b.SendEvent(JobEvent{Type: "progress"})
	if len(ch2) != 1 {
		t.Errorf("expected remaining listener to get the event, buffered %d", len(ch2))
	}
}

func TestEventBroadcaster_Cancel(t *testing.T) {
	var b EventBroadcaster
	ch := b.AddListener()
	ctx, cancel := context.WithCancel(context.Background())
	b.setCancel(cancel)

	b.Cancel()

	if ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
	if ev := <-ch; ev.Type != "cancelled" {
		t.Errorf("expected cancelled event, got %+v", ev)
	}
}

func TestRenderJob_CancelIsNoOpWhenFinished(t *testing.T) {
	job := &RenderJob{RenderJobView: RenderJobView{ID: "done", Status: JobStatusCompleted}}
	ch := job.AddListener()

	job.Cancel()

	if job.GetStatus() != JobStatusCompleted {
		t.Errorf("expected status to stay completed, got %s", job.GetStatus())
	}
	if len(ch) != 0 {
		t.Error("expected no cancelled event for a finished job")
	}
}

func TestJobManager_Lifecycle(t *testing.T) {
	m := NewJobManager()
	job := m.CreateJob(&RenderJob{RenderJobView: RenderJobView{ID: "job-1"}})

	if job.GetStatus() != JobStatusPending {
		t.Errorf("expected pending status, got %s", job.GetStatus())
	}
	if job.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if m.GetJob("job-1") != job {
		t.Error("expected GetJob to return the created job")
	}
	if len(m.ListJobs()) != 1 {
		t.Errorf("expected 1 job, got %d", len(m.ListJobs()))
	}

	m.DeleteJob("job-1")
	if m.GetJob("job-1") != nil {
		t.Error("expected job to be deleted")
	}
}

func TestJobManager_Prune(t *testing.T) {
	m := NewJobManager()
	old := time.Now().Add(-time.Hour)
	recent := time.Now()

	m.CreateJob(&RenderJob{RenderJobView: RenderJobView{ID: "running"}})
	oldDone := m.CreateJob(&RenderJob{RenderJobView: RenderJobView{ID: "old"}})
	oldDone.Status = JobStatusCompleted
	oldDone.CompletedAt = &old
	newDone := m.CreateJob(&RenderJob{RenderJobView: RenderJobView{ID: "new"}})
	newDone.Status = JobStatusFailed
	newDone.CompletedAt = &recent

	if n := m.Prune(30 * time.Minute); n != 1 {
		t.Errorf("expected 1 pruned job, got %d", n)
	}
	if m.GetJob("old") != nil {
		t.Error("expected old finished job to be pruned")
	}
	if m.GetJob("running") == nil || m.GetJob("new") == nil {
		t.Error("expected running and recent jobs to be kept")
	}
}
