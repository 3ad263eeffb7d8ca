package domain

import (
	"github.com/wtfpad/backend/internal/common"
	"github.com/wtfpad/backend/internal/domain/statistic"
	"github.com/wtfpad/backend/internal/domain/tier"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/testutil"
)

type testDomains struct {
	lock      *common.RegistryLock
	redis     *testutil.MockRedisClient
	publisher *testutil.MockPublisher
	oracle    *testutil.MockBalanceOracle

	xp        *xpDomain
	project   *projectDomain
	vote      *voteDomain
	presale   *presaleDomain
	lifecycle *lifecycleDomain
}

func newTestDomains() *testDomains {
	d := &testDomains{
		lock:      common.NewRegistryLock(),
		redis:     &testutil.MockRedisClient{},
		publisher: &testutil.MockPublisher{},
		oracle:    &testutil.MockBalanceOracle{Balances: map[string]uint64{}},
	}

	projectRepo := repository.NewProjectRepository()
	winnerRepo := repository.NewWinningProjectRepository()
	allowanceRepo := repository.NewVoteAllowanceRepository()
	xpRepo := repository.NewXPRepository()
	tiers := tier.DefaultTable()

	d.xp = NewXPDomain(xpRepo, statistic.New(xpRepo, d.redis), d.oracle, tiers, d.publisher)
	d.project = NewProjectDomain(projectRepo, winnerRepo, d.xp, d.lock)
	d.vote = NewVoteDomain(projectRepo, allowanceRepo, d.xp, d.oracle, tiers, d.lock)
	d.presale = NewPresaleDomain(winnerRepo, d.xp, d.lock)
	d.lifecycle = NewLifecycleDomain(
		projectRepo, winnerRepo, allowanceRepo, repository.NewRotationRepository(),
		xpRepo, d.publisher, d.lock,
	)

	return d
}
