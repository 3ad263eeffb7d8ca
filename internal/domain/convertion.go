package domain

import (
	"time"

	"github.com/wtfpad/backend/internal/domain/blockchain"
	"github.com/wtfpad/backend/internal/domain/tier"
	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func convertProject(p *entity.Project) model.Project {
	if p == nil {
		return model.Project{}
	}

	return model.Project{
		ID:            p.ID,
		CreatedAt:     p.CreatedAt.Format(defaultTimeLayout),
		Name:          p.Name,
		Ticker:        p.Ticker,
		Logo:          p.Logo,
		IsImageLogo:   p.IsImageLogo,
		URL:           p.URL,
		BuilderWallet: p.BuilderWallet.String,
		VaultedSupply: p.VaultedSupply,
		Phase:         string(p.Phase),
		Votes:         p.Votes,
		DaysActive:    p.DaysActive,
		PriorityScore: p.PriorityScore,
	}
}

func convertProjects(projects []entity.Project) []model.Project {
	result := []model.Project{}
	for i := range projects {
		result = append(result, convertProject(&projects[i]))
	}

	return result
}

func convertWinningProject(w *entity.WinningProject) *model.WinningProject {
	if w == nil {
		return nil
	}

	return &model.WinningProject{
		ID:            w.ID,
		Name:          w.Name,
		Ticker:        w.Ticker,
		Logo:          w.Logo,
		IsImageLogo:   w.IsImageLogo,
		URL:           w.URL,
		VaultedSupply: w.VaultedSupply,
		PresaleMints:  w.PresaleMints,
		EndsAt:        w.EndsAt.Format(defaultTimeLayout),
	}
}

func convertXPAccount(a *entity.XPAccount) *model.XPAccount {
	if a == nil {
		return nil
	}

	return &model.XPAccount{
		Wallet:            a.Wallet,
		VoteXP:            a.VoteXP,
		PresaleXP:         a.PresaleXP,
		BuilderXP:         a.BuilderXP,
		TotalXP:           a.TotalXP,
		VotesCast:         a.VotesCast,
		MintsContributed:  a.MintsContributed,
		ProjectsSubmitted: a.ProjectsSubmitted,
		CreatedAt:         a.CreatedAt.Format(defaultTimeLayout),
	}
}

func convertXPLogs(logs []entity.XPLog) []model.XPLog {
	result := []model.XPLog{}
	for _, l := range logs {
		result = append(result, model.XPLog{
			ID:        l.ID,
			Type:      string(l.Type),
			Amount:    l.Amount,
			CreatedAt: l.CreatedAt.Format(defaultTimeLayout),
		})
	}

	return result
}

func convertTier(t *tier.Tier) *model.Tier {
	if t == nil {
		return nil
	}

	return &model.Tier{
		ID:         t.ID,
		Name:       t.Name,
		MinBalance: t.MinBalance,
		BonusVotes: t.BonusVotes,
	}
}

func convertWatcherStats(s blockchain.WatcherStats) model.WatcherStats {
	stats := model.WatcherStats{
		IsRunning:          s.IsRunning,
		EventsProcessed:    s.EventsProcessed,
		Errors:             s.Errors,
		LastProcessedBlock: s.LastProcessedBlock,
	}

	if !s.LastEventTime.IsZero() {
		stats.LastEventTime = s.LastEventTime.Format(defaultTimeLayout)
	}

	return stats
}

func convertTrackedContracts(contracts []entity.TrackedContract) []model.TrackedContract {
	result := make([]model.TrackedContract, 0, len(contracts))
	for _, c := range contracts {
		result = append(result, model.TrackedContract{
			Address:    c.Address,
			Name:       c.Name,
			Type:       string(c.Type),
			ProjectID:  c.ProjectID,
			StartBlock: c.StartBlock,
			IsActive:   c.IsActive,
		})
	}

	return result
}
