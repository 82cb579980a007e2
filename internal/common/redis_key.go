package common

import "fmt"

const RedisKeyLeaderboard = "rewards:leaderboard:lifetime_xp"

func RedisKeyUserLock(userID string) string {
	return fmt.Sprintf("rewards:lock:%s", userID)
}
