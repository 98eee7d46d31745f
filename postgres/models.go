package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

// A statusUpdate represents a status update in the database.
type statusUpdate struct {
	bun.BaseModel `bun:"table:status_updates,alias:su"`

	ID            int64     `bun:",pk,autoincrement"`
	Author        int64     `bun:",notnull"`
	SportID       int64     `bun:",notnull"`
	TeamID        int64     `bun:",notnull"`
	Text          string    `bun:",notnull"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpvoteCount   int       `bun:",notnull"`
	DownvoteCount int       `bun:",notnull"`

	Voted bool `bun:",scanonly"`
}

type statusVote struct {
	bun.BaseModel `bun:"table:status_votes,alias:sv"`

	ID             int64     `bun:",pk,autoincrement"`
	Voter          int64     `bun:",notnull"`
	StatusUpdateID int64     `bun:",notnull"`
	Score          int       `bun:",notnull"`
	VotedAt        time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// The network directory tables are owned by the sports directory; the
// status service only reads them.
type sport struct {
	bun.BaseModel `bun:"table:sports,alias:sp"`

	ID   int64  `bun:",pk"`
	Name string `bun:",notnull"`
}

type sportTeam struct {
	bun.BaseModel `bun:"table:sport_teams,alias:st"`

	ID      int64  `bun:",pk"`
	SportID int64  `bun:",notnull"`
	Name    string `bun:",notnull"`
}

func (u statusUpdate) StatusUpdate() status.StatusUpdate {
	return status.StatusUpdate{
		ID:            u.ID,
		Author:        u.Author,
		SportID:       u.SportID,
		TeamID:        u.TeamID,
		Text:          u.Text,
		CreatedAt:     u.CreatedAt,
		UpvoteCount:   u.UpvoteCount,
		DownvoteCount: u.DownvoteCount,
		Voted:         u.Voted,
	}
}

func (v statusVote) StatusVote() status.Vote {
	return status.Vote{
		ID:             v.ID,
		Voter:          v.Voter,
		StatusUpdateID: v.StatusUpdateID,
		Score:          v.Score,
		VotedAt:        v.VotedAt,
	}
}

func (v statusVote) StatusVoter() status.Voter {
	return status.Voter{
		Actor:   v.Voter,
		VotedAt: v.VotedAt,
		Score:   v.Score,
	}
}
