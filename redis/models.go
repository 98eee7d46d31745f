package redis

// userStats represents the statistics hash of a user.
type userStats struct {
	StatusCount int64 `redis:"user_status_count"`
}

const statusCountField = "user_status_count"
