package entity

import (
	"database/sql"
	"time"

	"github.com/wtfpad/backend/pkg/enum"
)

type ProjectPhase string

var (
	ProjectSubmission = enum.New(ProjectPhase("submission"))
	ProjectActive     = enum.New(ProjectPhase("active"))
	ProjectWinner     = enum.New(ProjectPhase("winner"))
	ProjectArchived   = enum.New(ProjectPhase("archived"))
)

// Project lives in exactly one phase. The phase column is the membership of
// the registry collections.
type Project struct {
	Base
	Name          string         `gorm:"not null"`
	Ticker        string         `gorm:"not null"`
	Logo          string
	IsImageLogo   bool
	URL           string         `gorm:"not null"`
	BuilderWallet sql.NullString `gorm:"index"`
	VaultedSupply int

	Phase         ProjectPhase `gorm:"index;not null"`
	Votes         int          `gorm:"not null;default:0"`
	DaysActive    int          `gorm:"not null;default:0"`
	PriorityScore int          `gorm:"not null;default:0"`

	// Position orders projects inside a phase: submission order for
	// submissions, promotion order for active projects.
	Position       int64 `gorm:"index"`
	PhaseChangedAt time.Time
}
