package status

import "time"

// A View is a status update prepared for display to a viewer.
type View struct {
	ID        int64     `json:"id"`
	Actor     int64     `json:"actor"`
	SportID   int64     `json:"sport_id"`
	TeamID    int64     `json:"team_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Plus      int       `json:"plus_count"`
	Minus     int       `json:"minus_count"`
	Voted     bool      `json:"voted"`
	CanDelete bool      `json:"can_delete"`
	CanVote   bool      `json:"can_vote"`
}

// NewView maps u to the view seen by viewer.
func NewView(u StatusUpdate, viewer Principal) View {
	return View{
		ID:        u.ID,
		Actor:     u.Author,
		SportID:   u.SportID,
		TeamID:    u.TeamID,
		Text:      u.Text,
		CreatedAt: u.CreatedAt,
		Plus:      u.UpvoteCount,
		Minus:     u.DownvoteCount,
		Voted:     u.Voted,
		CanDelete: viewer.CanDelete(u.Author),
		CanVote:   viewer.CanVote(u.Author, u.Voted),
	}
}

// NewViews maps every update in us.
func NewViews(us []StatusUpdate, viewer Principal) []View {
	out := make([]View, len(us))
	for i, u := range us {
		out[i] = NewView(u, viewer)
	}
	return out
}
