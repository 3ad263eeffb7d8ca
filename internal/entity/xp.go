package entity

import (
	"time"

	"github.com/wtfpad/backend/pkg/enum"
)

type XPType string

var (
	XPVote    = enum.New(XPType("vote"))
	XPPresale = enum.New(XPType("presale"))
	XPBuilder = enum.New(XPType("builder"))
)

// XPAccount is created on the first XP-earning action of a wallet and never
// deleted. TotalXP is always VoteXP + PresaleXP + BuilderXP.
type XPAccount struct {
	Wallet    string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	VoteXP    int64 `gorm:"not null;default:0"`
	PresaleXP int64 `gorm:"not null;default:0"`
	BuilderXP int64 `gorm:"not null;default:0"`
	TotalXP   int64 `gorm:"not null;default:0;index"`

	VotesCast         int64 `gorm:"not null;default:0"`
	MintsContributed  int64 `gorm:"not null;default:0"`
	ProjectsSubmitted int64 `gorm:"not null;default:0"`

	// Seq keeps the creation order for stable leaderboard ties.
	Seq int64 `gorm:"index"`
}

func (a XPAccount) SumXP() int64 {
	return a.VoteXP + a.PresaleXP + a.BuilderXP
}

// XPLog is append-only. ID is a snowflake sequence so it also orders entries.
type XPLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Wallet    string    `gorm:"index:idx_xp_logs_wallet_created_at"`
	Type      XPType    `gorm:"not null"`
	Amount    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"index;index:idx_xp_logs_wallet_created_at"`
}
