package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adampresley/weddinggallery/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrNoFiles = fmt.Errorf("select at least one photo")
)

type UploadRequest struct {
	Album      string
	ClientSlug string
	Files      []models.UploadFile

	// Cleanup runs once the job is finished, whatever the outcome.
	Cleanup func()
}

type UploadJobServicer interface {
	Get(id string) (models.UploadJob, bool)
	Start(request UploadRequest) (string, error)
	StartCleanupRoutine(interval time.Duration)
	StopCleanupRoutine()
	Stop()
}

type UploadJobServiceConfig struct {
	Committer    BatchCommitter
	Notifier     UploadNotifier
	Now          func() time.Time
	Orchestrator UploadOrchestrator
	Retention    time.Duration
	ShutdownCtx  context.Context
}

/*
UploadJobService runs upload-then-commit workflows in the background
and keeps their progress in memory so the admin page can poll it.
*/
type UploadJobService struct {
	committer    BatchCommitter
	notifier     UploadNotifier
	now          func() time.Time
	orchestrator UploadOrchestrator
	retention    time.Duration
	shutdownCtx  context.Context

	mu            sync.RWMutex
	jobs          map[string]*models.UploadJob
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	wg            sync.WaitGroup
	running       sync.WaitGroup
}

func NewUploadJobService(config UploadJobServiceConfig) *UploadJobService {
	if config.Now == nil {
		config.Now = time.Now
	}

	if config.Retention <= 0 {
		config.Retention = time.Hour
	}

	if config.ShutdownCtx == nil {
		config.ShutdownCtx = context.Background()
	}

	return &UploadJobService{
		committer:    config.Committer,
		notifier:     config.Notifier,
		now:          config.Now,
		orchestrator: config.Orchestrator,
		retention:    config.Retention,
		shutdownCtx:  config.ShutdownCtx,
		jobs:         map[string]*models.UploadJob{},
	}
}

func (s *UploadJobService) Get(id string) (models.UploadJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]

	if !ok {
		return models.UploadJob{}, false
	}

	return *job, true
}

// Start validates the request, registers a job and runs it in the background.
func (s *UploadJobService) Start(request UploadRequest) (string, error) {
	id, err := s.register(request)

	if err != nil {
		if request.Cleanup != nil {
			request.Cleanup()
		}

		return "", err
	}

	s.running.Add(1)

	go func() {
		defer s.running.Done()
		s.Run(s.shutdownCtx, id, request)
	}()

	return id, nil
}

func (s *UploadJobService) register(request UploadRequest) (string, error) {
	slug := models.NormalizeSlug(request.ClientSlug)

	if slug == "" {
		return "", ErrEmptyClientSlug
	}

	if len(request.Files) == 0 {
		return "", ErrNoFiles
	}

	if !models.IsValidAlbum(request.Album) {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownAlbum, request.Album)
	}

	job := &models.UploadJob{
		ID:         uuid.New().String(),
		ClientSlug: slug,
		Album:      request.Album,
		Progress:   models.UploadProgress{Total: len(request.Files)},
		Status:     models.UploadJobRunning,
		Message:    fmt.Sprintf("Uploading %d photos...", len(request.Files)),
		StartedAt:  s.now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	return job.ID, nil
}

/*
Run uploads every file, commits the successful URLs as one batch and
records the outcome on the job. It returns the finished job.
*/
func (s *UploadJobService) Run(ctx context.Context, id string, request UploadRequest) models.UploadJob {
	l := slog.With("jobID", id, "clientSlug", request.ClientSlug, "files", len(request.Files))
	l.Info("starting upload job")

	defer func() {
		if request.Cleanup != nil {
			request.Cleanup()
		}
	}()

	results := s.orchestrator.UploadAll(ctx, request.Files, func(progress models.UploadProgress) {
		s.update(id, func(job *models.UploadJob) {
			job.Progress = progress
		})
	})

	urls := SuccessfulURLs(results)
	failed := FailedCount(results)

	status := models.UploadJobCommitted
	message := fmt.Sprintf("All %d photos uploaded!", len(request.Files))

	switch {
	case len(urls) == 0:
		status = models.UploadJobFailed
		message = fmt.Sprintf("All %d uploads failed", len(request.Files))

	default:
		if _, err := s.committer.Commit(ctx, urls, request.ClientSlug, request.Album); err != nil {
			l.Error("error committing uploaded photos", "error", err, "orphanedUploads", len(urls))
			status = models.UploadJobFailed
			message = "Error saving the uploaded photos"
		} else if failed > 0 {
			status = models.UploadJobPartial
			message = fmt.Sprintf("Uploaded: %d, errors: %d", len(urls), failed)
		}
	}

	s.update(id, func(job *models.UploadJob) {
		job.Status = status
		job.Message = message
		job.FinishedAt = s.now()
	})

	job, _ := s.Get(id)
	l.Info("upload job finished", "status", status, "completed", job.Progress.Completed, "failed", job.Progress.Failed)

	if s.notifier != nil {
		if err := s.notifier.NotifyUploadFinished(job); err != nil {
			l.Error("failed to send upload notification", "error", err)
		}
	}

	return job
}

func (s *UploadJobService) update(id string, fn func(job *models.UploadJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

// StartCleanupRoutine periodically forgets finished jobs older than the retention period.
func (s *UploadJobService) StartCleanupRoutine(interval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.cleanupTicker.C:
				s.cleanupExpiredJobs()
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()

	slog.Info("upload job cleanup routine started", "interval", interval)
}

func (s *UploadJobService) StopCleanupRoutine() {
	if s.cleanupTicker != nil {
		close(s.stopCleanup)
		s.wg.Wait()
		slog.Info("upload job cleanup routine stopped")
	}
}

/*
Stop stops the cleanup routine and waits for running jobs to finish.
Cancel the shutdown context first so in-flight uploads give up quickly.
*/
func (s *UploadJobService) Stop() {
	s.StopCleanupRoutine()
	s.running.Wait()
	slog.Info("upload jobs stopped")
}

func (s *UploadJobService) cleanupExpiredJobs() int {
	cutoff := s.now().Add(-s.retention)
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.IsFinished() && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}

	if removed > 0 {
		slog.Info("removed expired upload jobs", "removed", removed)
	}

	return removed
}
