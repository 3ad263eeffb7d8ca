package entity

import (
	"time"

	"github.com/wtfpad/backend/pkg/enum"
)

type ContractType string

var (
	ContractERC721  = enum.New(ContractType("ERC721"))
	ContractERC1155 = enum.New(ContractType("ERC1155"))
)

type TrackedContract struct {
	Address    string `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Name       string
	Type       ContractType
	ProjectID  string `gorm:"index"`
	StartBlock uint64
	IsActive   bool
}

type MintEventType string

var (
	MintTransfer       = enum.New(MintEventType("transfer"))
	MintTransferSingle = enum.New(MintEventType("transfer_single"))
	MintTransferBatch  = enum.New(MintEventType("transfer_batch"))
	MintWebhook        = enum.New(MintEventType("webhook"))
)

// MintEvent is keyed by (tx hash, log index) so a replayed log is ignored.
type MintEvent struct {
	TxHash      string        `gorm:"primaryKey"`
	LogIndex    uint          `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt   time.Time     `gorm:"index"`
	Contract    string        `gorm:"index"`
	Wallet      string        `gorm:"index"`
	TokenID     string
	Amount      int64
	BlockNumber uint64        `gorm:"index"`
	ProjectID   string
	EventType   MintEventType

	// Recorded is set when the mint was credited to the winner's presale.
	Recorded bool
}
