package cron

import (
	"context"
	"time"

	"github.com/wtfpad/backend/internal/domain"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/dateutil"
	"github.com/wtfpad/backend/pkg/xcontext"
)

type InvariantCheckCronJob struct {
	lifecycleDomain domain.LifecycleDomain
}

func NewInvariantCheckCronJob(lifecycleDomain domain.LifecycleDomain) *InvariantCheckCronJob {
	return &InvariantCheckCronJob{lifecycleDomain: lifecycleDomain}
}

func (job *InvariantCheckCronJob) Do(ctx context.Context) {
	resp, err := job.lifecycleDomain.CheckInvariants(ctx, &model.CheckInvariantsRequest{})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invariant check failed: %v", err)
		return
	}

	if len(resp.Violations) > 0 {
		xcontext.Logger(ctx).Warnf("Found %d invariant violations, corrected: %t", len(resp.Violations), resp.Corrected)
	}
}

func (job *InvariantCheckCronJob) RunNow() bool {
	return true
}

func (job *InvariantCheckCronJob) Next() time.Time {
	return dateutil.NextHour(time.Now())
}
