package main

import (
	"github.com/urfave/cli/v2"
	"github.com/wtfpad/backend/internal/model"
	"github.com/wtfpad/backend/pkg/xcontext"
)

func (s *srv) startRotate(*cli.Context) error {
	defer s.close()

	if err := s.setup(nil); err != nil {
		return err
	}

	s.loadDomains()

	resp, err := s.lifecycleDomain.RunDailyRotation(s.ctx, &model.RunDailyRotationRequest{})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Rotation %s done: winner=%q aged=%v promoted=%v archived=%v wallets_reset=%d",
		resp.Date, resp.WinnerID, resp.Aged, resp.Promoted, resp.Archived, resp.WalletsReset)
	return nil
}
