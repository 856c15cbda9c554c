package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeRecorder) RecordJob(jobType, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, jobType+":"+status)
}

func TestEnqueueRunsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &fakeRecorder{}
	svc := New(4, rec)
	svc.Start(ctx)

	id, err := svc.Enqueue(JobPayrollProcess, func(context.Context) (any, error) {
		return map[string]int{"processed": 3}, nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		run, err := svc.Get(id)
		return err == nil && run.Status == StatusCompleted
	}, time.Second, 5*time.Millisecond)

	run, err := svc.Get(id)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"processed": 3}, run.Details)
	require.NotNil(t, run.CompletedAt)
}

func TestRunNowRecordsFailure(t *testing.T) {
	rec := &fakeRecorder{}
	svc := New(1, rec)

	run, err := svc.RunNow(context.Background(), JobPayrollProcess, func(context.Context) (any, error) {
		return nil, errors.New("no employees")
	})
	require.Error(t, err)
	require.Equal(t, StatusFailed, run.Status)
	require.Equal(t, "no employees", run.Error)
	require.Equal(t, []string{"payroll_process:failed"}, rec.seen)
}

func TestEnqueueQueueFull(t *testing.T) {
	svc := New(1, nil)
	noop := func(context.Context) (any, error) { return nil, nil }

	_, err := svc.Enqueue(JobPayrollProcess, noop)
	require.NoError(t, err)
	_, err = svc.Enqueue(JobPayrollProcess, noop)
	require.ErrorIs(t, err, ErrQueueFull)
}

func TestGetUnknownRun(t *testing.T) {
	_, err := New(1, nil).Get("missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestFinishedRunsArePruned(t *testing.T) {
	now := time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)
	svc := New(1, nil)
	svc.now = func() time.Time { return now }
	noop := func(context.Context) (any, error) { return nil, nil }

	old, err := svc.RunNow(context.Background(), JobPayrollProcess, noop)
	require.NoError(t, err)

	now = now.Add(defaultRetention + time.Minute)
	fresh, err := svc.RunNow(context.Background(), JobPayrollProcess, noop)
	require.NoError(t, err)

	_, err = svc.Get(old.ID)
	require.ErrorIs(t, err, ErrRunNotFound)
	_, err = svc.Get(fresh.ID)
	require.NoError(t, err)
}
