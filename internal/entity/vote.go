package entity

import "time"

// VoteAllowance stores what a wallet spent since the last rotation. The
// allowance itself is recomputed from the wallet's tier on every read.
type VoteAllowance struct {
	Wallet    string `gorm:"primarykey"`
	Spent     int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
