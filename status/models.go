package status

import "time"

// A StatusUpdate represents a persisted status update ("thought").
type StatusUpdate struct {
	ID            int64     `json:"id"`
	Author        int64     `json:"author"`
	SportID       int64     `json:"sport_id"`
	TeamID        int64     `json:"team_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UpvoteCount   int       `json:"upvote_count"`
	DownvoteCount int       `json:"downvote_count"`

	// Voted reports whether the viewer the update was loaded for has voted on it.
	Voted bool `json:"voted"`
}

// Personal reports whether the update is not associated with any network.
func (u StatusUpdate) Personal() bool {
	return u.SportID == 0 && u.TeamID == 0
}

// A Vote represents a single user's agreement with a status update.
type Vote struct {
	ID             int64     `json:"id"`
	Voter          int64     `json:"voter"`
	StatusUpdateID int64     `json:"status_update_id"`
	Score          int       `json:"score"`
	VotedAt        time.Time `json:"voted_at"`
}

// A Voter is an entry of the list of users who voted on a status update.
type Voter struct {
	Actor   int64     `json:"actor"`
	VotedAt time.Time `json:"voted_at"`
	Score   int       `json:"score"`
}

// A Tally holds the denormalized vote counters of a status update.
type Tally struct {
	Plus  int `json:"plus"`
	Minus int `json:"minus"`
}

// A Filter selects status updates in a feed. Zero values disable a criterion.
type Filter struct {
	Author  int64
	SportID int64
	TeamID  int64

	// SportTeams holds the teams registered under SportID. It is only
	// consulted for sport network feeds, i.e. SportID > 0 and TeamID == 0.
	SportTeams []int64

	// Viewer is the actor the voted flag is computed for.
	Viewer int64
}

// Network reports whether the filter selects a sport or team network.
func (f Filter) Network() bool {
	return f.SportID > 0 || f.TeamID > 0
}

// SportNetwork reports whether the filter selects a whole sport network.
func (f Filter) SportNetwork() bool {
	return f.SportID > 0 && f.TeamID == 0
}
