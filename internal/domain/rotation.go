package domain

import "github.com/wtfpad/backend/internal/entity"

// rotationPlan is the outcome of a daily rotation, computed before anything is
// written. Every slice holds copies with their post-rotation state.
type rotationPlan struct {
	winner   *entity.Project
	aged     []entity.Project
	archived []entity.Project
	promoted []entity.Project
}

// planRotation expects active projects in promotion order and submissions in
// submission order. The inputs are not modified.
func planRotation(active, submissions []entity.Project, maxDaysActive int) rotationPlan {
	plan := rotationPlan{
		aged:     []entity.Project{},
		archived: []entity.Project{},
		promoted: []entity.Project{},
	}

	// The first project reaching the maximum wins ties.
	winnerIndex := -1
	for i := range active {
		if winnerIndex == -1 || active[i].Votes > active[winnerIndex].Votes {
			winnerIndex = i
		}
	}

	if winnerIndex >= 0 {
		winner := active[winnerIndex]
		winner.Phase = entity.ProjectWinner
		plan.winner = &winner
	}

	for i, p := range active {
		if i == winnerIndex {
			continue
		}

		p.Votes = 0
		p.DaysActive++
		if p.DaysActive > maxDaysActive {
			p.Phase = entity.ProjectArchived
			plan.archived = append(plan.archived, p)
		} else {
			plan.aged = append(plan.aged, p)
		}
	}

	for _, p := range submissions {
		p.Phase = entity.ProjectActive
		p.Votes = 0
		p.DaysActive = 1
		plan.promoted = append(plan.promoted, p)
	}

	return plan
}

func projectIDs(projects []entity.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	return ids
}
