package common

import "fmt"

const RedisKeyLeaderboardPattern = "leaderboard:*"

func RedisKeyLeaderboard(sortKey, timeframe string) string {
	return fmt.Sprintf("leaderboard:%s:%s", timeframe, sortKey)
}

func RedisKeyBalance(wallet string) string {
	return fmt.Sprintf("balance:%s", wallet)
}

// RedisKeyLastBalance has no TTL. It is the fallback when the chain is
// unreachable.
func RedisKeyLastBalance(wallet string) string {
	return fmt.Sprintf("balance:last:%s", wallet)
}

func RedisKeyNonce(wallet string) string {
	return fmt.Sprintf("auth:nonce:%s", wallet)
}
