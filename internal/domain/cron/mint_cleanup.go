package cron

import (
	"context"
	"time"

	"github.com/wtfpad/backend/pkg/dateutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

const mintEventRetention = 24 * time.Hour

type MintEventCleaner interface {
	CleanupEvents(ctx context.Context, retention time.Duration) (int64, error)
}

type MintCleanupCronJob struct {
	cleaner MintEventCleaner
}

func NewMintCleanupCronJob(cleaner MintEventCleaner) *MintCleanupCronJob {
	return &MintCleanupCronJob{cleaner: cleaner}
}

func (job *MintCleanupCronJob) Do(ctx context.Context) {
	deleted, err := job.cleaner.CleanupEvents(ctx, mintEventRetention)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clean up mint events: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Cleaned up %d mint events", deleted)
}

func (job *MintCleanupCronJob) RunNow() bool {
	return false
}

func (job *MintCleanupCronJob) Next() time.Time {
	return dateutil.NextHour(time.Now())
}
