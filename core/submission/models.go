package submission

// Entry is a user's aggregated standing on the leaderboard.
// RankPosition is nil for users that have not been ranked yet;
// they sort after ranked users.
type Entry struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	RankPosition *int   `json:"rank_position"`
	Points       int    `json:"points"`
	Submissions  int    `json:"submissions"`
}
