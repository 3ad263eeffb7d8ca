package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/testutil"
	"go.uber.org/goleak"
)

type countJob struct {
	runNow bool
	every  time.Duration
	count  atomic.Int32
}

func (j *countJob) Do(context.Context) { j.count.Add(1) }
func (j *countJob) RunNow() bool       { return j.runNow }
func (j *countJob) Next() time.Time    { return time.Now().Add(j.every) }

func TestCronJobManager(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	frequent := &countJob{runNow: true, every: 10 * time.Millisecond}
	rare := &countJob{every: time.Hour}

	m := NewCronJobManager()
	m.Register(frequent)
	m.Register(rare)

	stopped := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return frequent.count.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}

	require.Equal(t, int32(0), rare.count.Load())
}

type mockLifecycleDomain struct {
	RunDailyRotationFunc func(context.Context, *model.RunDailyRotationRequest) (*model.RunDailyRotationResponse, error)
	CheckInvariantsFunc  func(context.Context, *model.CheckInvariantsRequest) (*model.CheckInvariantsResponse, error)
}

func (m *mockLifecycleDomain) RunDailyRotation(
	ctx context.Context, req *model.RunDailyRotationRequest,
) (*model.RunDailyRotationResponse, error) {
	return m.RunDailyRotationFunc(ctx, req)
}

func (m *mockLifecycleDomain) CheckInvariants(
	ctx context.Context, req *model.CheckInvariantsRequest,
) (*model.CheckInvariantsResponse, error) {
	return m.CheckInvariantsFunc(ctx, req)
}

func TestDailyRotationCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	calls := 0
	job := NewDailyRotationCronJob(&mockLifecycleDomain{
		RunDailyRotationFunc: func(context.Context, *model.RunDailyRotationRequest) (*model.RunDailyRotationResponse, error) {
			calls++
			if calls > 1 {
				return nil, errorx.New(errorx.AlreadyRotated, "done")
			}
			return &model.RunDailyRotationResponse{Date: "2026-10-17", WinnerID: "1"}, nil
		},
	})

	job.Do(ctx)
	job.Do(ctx)
	require.Equal(t, 2, calls)
	require.False(t, job.RunNow())

	next := job.Next()
	require.True(t, next.After(time.Now()))
	require.Equal(t, 0, next.Hour())
	require.Equal(t, 0, next.Minute())
}

func TestInvariantCheckCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	called := false
	job := NewInvariantCheckCronJob(&mockLifecycleDomain{
		CheckInvariantsFunc: func(context.Context, *model.CheckInvariantsRequest) (*model.CheckInvariantsResponse, error) {
			called = true
			return &model.CheckInvariantsResponse{Violations: []string{"drift"}, Corrected: true}, nil
		},
	})

	job.Do(ctx)
	require.True(t, called)
	require.True(t, job.RunNow())
	require.LessOrEqual(t, time.Until(job.Next()), time.Hour)
}

type mockCleaner struct {
	retention time.Duration
	err       error
}

func (m *mockCleaner) CleanupEvents(ctx context.Context, retention time.Duration) (int64, error) {
	m.retention = retention
	return 3, m.err
}

func TestMintCleanupCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	cleaner := &mockCleaner{}

	NewMintCleanupCronJob(cleaner).Do(ctx)
	require.Equal(t, 24*time.Hour, cleaner.retention)

	cleaner.err = errors.New("db down")
	NewMintCleanupCronJob(cleaner).Do(ctx)
}
