package entity

import "time"

// WinningProject is the winner slot. At most one row is not soft-deleted; its
// ID is the winning project's ID.
type WinningProject struct {
	Base
	Name          string
	Ticker        string
	Logo          string
	IsImageLogo   bool
	URL           string
	VaultedSupply int
	PresaleMints  int
	EndsAt        time.Time
}
