package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrpay/internal/platform/logger"
)

const (
	JobPayrollProcess = "payroll_process"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	defaultRetention = 24 * time.Hour
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrRunNotFound = errors.New("job run not found")
)

type RunFunc func(context.Context) (any, error)

type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"jobType"`
	Status      string     `json:"status"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Recorder observes job outcomes; the metrics collector implements it.
type Recorder interface {
	RecordJob(jobType, status string)
}

type Service struct {
	queue     chan job
	recorder  Recorder
	retention time.Duration
	now       func() time.Time

	mu   sync.RWMutex
	runs map[string]*Run
}

type job struct {
	runID string
	Type  string
	Run   RunFunc
}

func New(queueSize int, recorder Recorder) *Service {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Service{
		queue:     make(chan job, queueSize),
		recorder:  recorder,
		retention: defaultRetention,
		now:       time.Now,
		runs:      map[string]*Run{},
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue registers a queued run and hands it to the worker.
func (s *Service) Enqueue(jobType string, run RunFunc) (string, error) {
	id := s.register(jobType)

	select {
	case s.queue <- job{runID: id, Type: jobType, Run: run}:
		return id, nil
	default:
		s.mu.Lock()
		delete(s.runs, id)
		s.mu.Unlock()
		logger.Warn(context.Background(), "job queue full", zap.String("jobType", jobType))
		return "", ErrQueueFull
	}
}

// RunNow executes run synchronously and records it like a queued job.
func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (Run, error) {
	id := s.register(jobType)
	_, err := s.runJob(ctx, job{runID: id, Type: jobType, Run: run})
	out, _ := s.Get(id)
	return out, err
}

// register records a queued run and drops finished runs older than the
// retention window.
func (s *Service) register(jobType string) string {
	id := uuid.NewString()
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for runID, r := range s.runs {
		if r.CompletedAt != nil && now.Sub(*r.CompletedAt) > s.retention {
			delete(s.runs, runID)
		}
	}
	s.runs[id] = &Run{ID: id, Type: jobType, Status: StatusQueued, CreatedAt: now}
	return id
}

func (s *Service) Get(id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return *r, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				logger.Warn(ctx, "job run failed", zap.String("jobType", j.Type), zap.String("runId", j.runID), zap.Error(err))
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	s.update(j.runID, func(r *Run) { r.Status = StatusRunning })

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	s.update(j.runID, func(r *Run) {
		now := s.now().UTC()
		r.Status = status
		r.Details = details
		r.CompletedAt = &now
		if err != nil {
			r.Error = err.Error()
		}
	})
	if s.recorder != nil {
		s.recorder.RecordJob(j.Type, status)
	}
	return details, err
}

func (s *Service) update(id string, fn func(*Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[id]; ok {
		fn(r)
	}
}
