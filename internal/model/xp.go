package model

import "github.com/wtfpad/backend/pkg/enum"

type SortKey string

var (
	SortByTotalXP   = enum.New(SortKey("totalXP"))
	SortByVoteXP    = enum.New(SortKey("voteXP"))
	SortByPresaleXP = enum.New(SortKey("presaleXP"))
	SortByBuilderXP = enum.New(SortKey("builderXP"))
)

type Timeframe string

var (
	Daily   = enum.New(Timeframe("daily"))
	Weekly  = enum.New(Timeframe("weekly"))
	Monthly = enum.New(Timeframe("monthly"))
	AllTime = enum.New(Timeframe("allTime"))
)

type GetLeaderboardRequest struct {
	SortKey   string `form:"sort_key"`
	Timeframe string `form:"timeframe"`
	Limit     int    `form:"limit" validate:"min=0"`
}

type GetLeaderboardResponse struct {
	SortKey   string             `json:"sort_key"`
	Timeframe string             `json:"timeframe"`
	Entries   []LeaderboardEntry `json:"entries"`
}

type GetRankRequest struct {
	Wallet    string `form:"wallet"`
	SortKey   string `form:"sort_key"`
	Timeframe string `form:"timeframe"`
}

type GetRankResponse struct {
	Wallet string `json:"wallet"`
	Rank   int    `json:"rank"`
}

type GetXPAccountRequest struct {
	Wallet   string `form:"wallet"`
	LogLimit int    `form:"log_limit" validate:"min=0"`
}

type GetXPAccountResponse struct {
	Account *XPAccount `json:"account"`
	Logs    []XPLog    `json:"logs"`
}

type GetTierRequest struct {
	Wallet string `form:"wallet"`
}

type GetTierResponse struct {
	Wallet     string  `json:"wallet"`
	Balance    uint64  `json:"balance"`
	Tier       *Tier   `json:"tier"`
	NextTier   *Tier   `json:"next_tier"`
	Current    uint64  `json:"current"`
	Required   uint64  `json:"required"`
	Percentage float64 `json:"percentage"`
}
