package model

type XPAwardedEvent struct {
	Wallet  string `json:"wallet"`
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	TotalXP int64  `json:"total_xp"`
}

type RotationCompletedEvent struct {
	Date     string   `json:"date"`
	WinnerID string   `json:"winner_id,omitempty"`
	Archived []string `json:"archived"`
	Promoted []string `json:"promoted"`
}
