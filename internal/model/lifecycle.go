package model

type RunDailyRotationRequest struct{}

type RunDailyRotationResponse struct {
	Date         string   `json:"date"`
	WinnerID     string   `json:"winner_id,omitempty"`
	Aged         []string `json:"aged"`
	Archived     []string `json:"archived"`
	Promoted     []string `json:"promoted"`
	WalletsReset int64    `json:"wallets_reset"`
}

type CheckInvariantsRequest struct{}

type CheckInvariantsResponse struct {
	Violations []string `json:"violations"`
	Corrected  bool     `json:"corrected"`
}

type GetWatcherStatusRequest struct{}

type GetWatcherStatusResponse struct {
	Stats WatcherStats `json:"stats"`
}

type ProcessRecentBlocksRequest struct {
	Blocks uint64 `json:"blocks" validate:"required,max=10000"`
}

type ProcessRecentBlocksResponse struct {
	Processed int `json:"processed"`
}

type GetTrackedContractsRequest struct{}

type GetTrackedContractsResponse struct {
	Contracts []TrackedContract `json:"contracts"`
}
