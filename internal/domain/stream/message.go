package stream

import "github.com/wtfpad/backend/internal/model"

type MessageType string

const (
	InitialData       MessageType = "initial_data"
	LeaderboardUpdate MessageType = "leaderboard_update"
	Heartbeat         MessageType = "heartbeat"
	Error             MessageType = "error"
)

type Message struct {
	Type        MessageType              `json:"type"`
	Timeframe   string                   `json:"timeframe,omitempty"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard,omitempty"`
	UserRank    int                      `json:"user_rank,omitempty"`
	Message     string                   `json:"message,omitempty"`
	Timestamp   int64                    `json:"timestamp"`
}
