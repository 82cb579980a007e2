package model

type GetLeaderBoardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type LeaderBoardEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	LifetimeXP int64  `json:"lifetime_xp"`
	Level      int    `json:"level"`
}

type GetLeaderBoardResponse struct {
	LeaderBoard []LeaderBoardEntry `json:"leaderboard"`
}
