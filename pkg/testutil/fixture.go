package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/wtfpad/backend/internal/entity"
	"github.com/wtfpad/backend/internal/repository"
	"github.com/wtfpad/backend/pkg/idutil"
)

const (
	Wallet1     = "0x742d35cc6635c0532925a3b8d82e8db7dc2f7b90"
	Wallet2     = "0x89205a3a3b2a69de6dbf7f01ed13b2108b2c43e7"
	Wallet3     = "0x1234567890abcdef1234567890abcdef12345678"
	Wallet4     = "0x9876543210fedcba9876543210fedcba98765432"
	Wallet5     = "0xabcdef1234567890abcdef1234567890abcdef12"
	AdminWallet = "0x000000000000000000000000000000000000ad01"

	WebhookSecret = "webhook-secret"
)

var (
	Submission1 = &entity.Project{
		Base:          entity.Base{ID: "sub-1"},
		Name:          "AI Trading Bot",
		Ticker:        "AITB",
		Logo:          "🤖",
		URL:           "https://aitrading.bot",
		BuilderWallet: sql.NullString{Valid: true, String: Wallet5},
		VaultedSupply: 15,
		Phase:         entity.ProjectSubmission,
		Position:      1,
	}

	Submission2 = &entity.Project{
		Base:          entity.Base{ID: "sub-2"},
		Name:          "Decentralized Storage",
		Ticker:        "DSTOR",
		Logo:          "💾",
		URL:           "https://decentstore.io",
		BuilderWallet: sql.NullString{Valid: true, String: Wallet4},
		VaultedSupply: 20,
		Phase:         entity.ProjectSubmission,
		Position:      2,
	}

	ActiveProject1 = newActiveProject("1", "DeFi Yield Protocol", "DYP", "https://defiyield.com", 23, 2, 2, 1)
	ActiveProject2 = newActiveProject("2", "Base Social Network", "BSN", "https://basesocial.xyz", 18, 1, 1, 2)
	ActiveProject3 = newActiveProject("3", "NFT Marketplace Plus", "NMP", "https://nftmarketplus.io", 14, 3, 1, 3)
	ActiveProject4 = newActiveProject("4", "Cross Chain Bridge", "CCB", "https://crossbridge.fi", 8, 4, 0, 4)
	ActiveProject5 = newActiveProject("5", "Mobile Wallet SDK", "MSDK", "https://mobilesdk.dev", 6, 1, 0, 5)
	ActiveProject6 = newActiveProject("6", "DAO Governance Tool", "DGOV", "https://daotools.xyz", 4, 2, 0, 6)
	ActiveProject7 = newActiveProject("7", "Privacy Mixer", "PMIX", "https://privacymix.io", 2, 5, 0, 7)

	ActiveProjects = []*entity.Project{
		ActiveProject1, ActiveProject2, ActiveProject3, ActiveProject4,
		ActiveProject5, ActiveProject6, ActiveProject7,
	}

	WinnerProject = &entity.Project{
		Base:          entity.Base{ID: "winning-1"},
		Name:          "Gaming Token Hub",
		Ticker:        "GTH",
		Logo:          "🎮",
		URL:           "https://gamingtoken.gg",
		VaultedSupply: 25,
		Phase:         entity.ProjectWinner,
		Position:      1,
	}

	ArchivedProject1 = &entity.Project{
		Base:          entity.Base{ID: "arch-1"},
		Name:          "Lending Protocol",
		Ticker:        "LEND",
		Logo:          "🏦",
		URL:           "https://lendingpro.base",
		BuilderWallet: sql.NullString{Valid: true, String: Wallet3},
		VaultedSupply: 8,
		Phase:         entity.ProjectArchived,
		DaysActive:    5,
		PriorityScore: 1,
		Position:      1,
	}

	XPAccount1 = &entity.XPAccount{Wallet: Wallet1, VoteXP: 42, PresaleXP: 65, BuilderXP: 20, TotalXP: 127, VotesCast: 42, MintsContributed: 65, ProjectsSubmitted: 2, Seq: 1}
	XPAccount2 = &entity.XPAccount{Wallet: Wallet2, VoteXP: 31, PresaleXP: 54, BuilderXP: 10, TotalXP: 95, VotesCast: 31, MintsContributed: 54, ProjectsSubmitted: 1, Seq: 2}
	XPAccount3 = &entity.XPAccount{Wallet: Wallet3, VoteXP: 24, PresaleXP: 39, BuilderXP: 10, TotalXP: 73, VotesCast: 24, MintsContributed: 39, ProjectsSubmitted: 1, Seq: 3}
	XPAccount4 = &entity.XPAccount{Wallet: Wallet4, VoteXP: 18, PresaleXP: 38, BuilderXP: 0, TotalXP: 56, VotesCast: 18, MintsContributed: 38, Seq: 4}
	XPAccount5 = &entity.XPAccount{Wallet: Wallet5, VoteXP: 11, PresaleXP: 23, BuilderXP: 0, TotalXP: 34, VotesCast: 11, MintsContributed: 23, Seq: 5}

	XPAccounts = []*entity.XPAccount{XPAccount1, XPAccount2, XPAccount3, XPAccount4, XPAccount5}
)

// fixtureLog places one log entry age before the fixture creation time.
type fixtureLog struct {
	wallet string
	xpType entity.XPType
	amount int64
	age    time.Duration
}

const day = 24 * time.Hour

// Daily:   Wallet1 42, Wallet2 41, Wallet3 39, Wallet4 18.
// Weekly:  Wallet1 107, Wallet4 56, Wallet2 41, Wallet3 39.
// Monthly: Wallet1 107, Wallet2 95, Wallet3 63, Wallet4 56.
var fixtureLogs = []fixtureLog{
	{Wallet1, entity.XPVote, 42, time.Hour},
	{Wallet1, entity.XPPresale, 65, 3 * day},
	{Wallet1, entity.XPBuilder, 20, 40 * day},
	{Wallet2, entity.XPVote, 31, 2 * time.Hour},
	{Wallet2, entity.XPPresale, 54, 10 * day},
	{Wallet2, entity.XPBuilder, 10, 2 * time.Hour},
	{Wallet3, entity.XPVote, 24, 20 * day},
	{Wallet3, entity.XPPresale, 39, time.Hour},
	{Wallet3, entity.XPBuilder, 10, 60 * day},
	{Wallet4, entity.XPVote, 18, 3 * time.Hour},
	{Wallet4, entity.XPPresale, 38, 5 * day},
	{Wallet5, entity.XPVote, 11, 40 * day},
	{Wallet5, entity.XPPresale, 23, 40 * day},
}

func newActiveProject(id, name, ticker, url string, votes, days, priority int, position int64) *entity.Project {
	return &entity.Project{
		Base:          entity.Base{ID: id},
		Name:          name,
		Ticker:        ticker,
		Logo:          ticker[:1],
		URL:           url,
		Phase:         entity.ProjectActive,
		Votes:         votes,
		DaysActive:    days,
		PriorityScore: priority,
		Position:      position,
		VaultedSupply: 10,
	}
}

// CreateFixtureDb seeds the demo registry: two submissions, seven active
// projects, the current winner, one archived project and five XP accounts.
func CreateFixtureDb(ctx context.Context) {
	InsertProjects(ctx)
	InsertWinner(ctx)
	InsertXPAccounts(ctx)
}

func InsertProjects(ctx context.Context) {
	projectRepo := repository.NewProjectRepository()

	all := []*entity.Project{Submission1, Submission2, WinnerProject, ArchivedProject1}
	all = append(all, ActiveProjects...)
	for _, p := range all {
		p := *p
		p.PhaseChangedAt = time.Now()
		if err := projectRepo.Create(ctx, &p); err != nil {
			panic(err)
		}
	}
}

func InsertWinner(ctx context.Context) {
	winnerRepo := repository.NewWinningProjectRepository()
	_, err := winnerRepo.Replace(ctx, &entity.WinningProject{
		Base:          entity.Base{ID: WinnerProject.ID},
		Name:          WinnerProject.Name,
		Ticker:        WinnerProject.Ticker,
		Logo:          WinnerProject.Logo,
		URL:           WinnerProject.URL,
		VaultedSupply: WinnerProject.VaultedSupply,
		PresaleMints:  1200,
		EndsAt:        time.Now().Add(day),
	})
	if err != nil {
		panic(err)
	}
}

func InsertXPAccounts(ctx context.Context) {
	xpRepo := repository.NewXPRepository()
	for _, a := range XPAccounts {
		a := *a
		if err := xpRepo.CreateAccountIfNotExists(ctx, &a); err != nil {
			panic(err)
		}
	}

	now := time.Now()
	for _, l := range fixtureLogs {
		err := xpRepo.CreateLog(ctx, &entity.XPLog{
			ID:        idutil.NextSeq(),
			Wallet:    l.wallet,
			Type:      l.xpType,
			Amount:    l.amount,
			CreatedAt: now.Add(-l.age),
		})
		if err != nil {
			panic(err)
		}
	}
}
