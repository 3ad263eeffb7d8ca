package cron

import (
	"context"
	"time"

	"github.com/wtfpad/backend/internal/domain"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/dateutil"
	"github.com/wtfpad/backend/pkg/errorx"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type DailyRotationCronJob struct {
	lifecycleDomain domain.LifecycleDomain
}

func NewDailyRotationCronJob(lifecycleDomain domain.LifecycleDomain) *DailyRotationCronJob {
	return &DailyRotationCronJob{lifecycleDomain: lifecycleDomain}
}

func (job *DailyRotationCronJob) Do(ctx context.Context) {
	resp, err := job.lifecycleDomain.RunDailyRotation(ctx, &model.RunDailyRotationRequest{})
	if err != nil {
		if errorx.Is(err, errorx.AlreadyRotated) {
			xcontext.Logger(ctx).Infof("Skip daily rotation: %v", err)
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot run daily rotation: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Daily rotation of %s, winner %q", resp.Date, resp.WinnerID)
}

func (job *DailyRotationCronJob) RunNow() bool {
	return false
}

func (job *DailyRotationCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
