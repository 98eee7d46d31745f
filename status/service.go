package status

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wikimedia/mediawiki-extensions-UserStatus/pager"
)

// MaxTextLength is the maximum length of a status update in characters.
const MaxTextLength = 1000

// A Store provides a storage layer that persists status updates and votes.
type Store interface {
	InsertStatus(ctx context.Context, u StatusUpdate) (StatusUpdate, error)
	// DeleteStatus deletes a status update and its votes. It returns the
	// deleted update, or nil if there was nothing to delete.
	DeleteStatus(ctx context.Context, id int64) (*StatusUpdate, error)
	// GetStatus returns the status update with the given id, or nil if it
	// does not exist. Voted is computed for viewer.
	GetStatus(ctx context.Context, id int64, viewer int64) (*StatusUpdate, error)
	ListStatuses(ctx context.Context, f Filter, limit, offset int) ([]StatusUpdate, error)
	CountStatuses(ctx context.Context, f Filter) (int, error)
	CountByAuthor(ctx context.Context) (map[int64]int64, error)

	// InsertVote records a vote and bumps the matching counter of the status
	// update atomically. It returns nil if the voter already voted.
	InsertVote(ctx context.Context, v Vote) (*Vote, error)
	HasVoted(ctx context.Context, voter, statusID int64) (bool, error)
	GetTally(ctx context.Context, statusID int64) (*Tally, error)
	ListVoters(ctx context.Context, statusID int64) ([]Voter, error)
}

// Stats maintains the per-user status count owned by the statistics
// aggregate.
type Stats interface {
	IncStatusCount(ctx context.Context, actor int64) error
	DecStatusCount(ctx context.Context, actor int64) error
	StatusCount(ctx context.Context, actor int64) (int64, error)
	SetStatusCounts(ctx context.Context, counts map[int64]int64) error
}

// Networks looks up the sport/team directory.
type Networks interface {
	SportTeams(ctx context.Context, sportID int64) ([]int64, error)
	NetworkName(ctx context.Context, sportID, teamID int64) (string, error)
}

// A Recorder records service events, typically as metrics.
type Recorder interface {
	StatusAdded(network bool)
	StatusDeleted()
	VoteCast(outcome string)
}

// Vote outcomes passed to Recorder.VoteCast.
const (
	VoteAccepted  = "accepted"
	VoteDuplicate = "duplicate"
	VoteSelf      = "self"
	VoteAnonymous = "anonymous"
	VoteMissing   = "missing"
)

// Service implements the status update and vote operations on top of a
// Store. All operations take the principal they act for explicitly.
type Service struct {
	Logger   *slog.Logger
	Store    Store
	Stats    Stats
	Networks Networks
	Metrics  Recorder

	// ReadOnly reports whether writes are suspended. Nil means never.
	ReadOnly func() bool
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) readOnly() bool {
	return s.ReadOnly != nil && s.ReadOnly()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return nopRecorder{}
	}
	return s.Metrics
}

// AddStatus posts a status update for p and increments p's status count.
func (s *Service) AddStatus(ctx context.Context, p Principal, sportID, teamID int64, text string) (StatusUpdate, error) {
	if s.readOnly() {
		return StatusUpdate{}, ErrReadOnly
	}
	if !p.Registered() || p.Blocked {
		return StatusUpdate{}, ErrForbidden
	}
	if sportID < 0 || teamID < 0 {
		return StatusUpdate{}, fmt.Errorf("%w: negative network id", ErrValidation)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return StatusUpdate{}, fmt.Errorf("%w: empty text", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return StatusUpdate{}, fmt.Errorf("%w: text longer than %d characters", ErrValidation, MaxTextLength)
	}

	u, err := s.Store.InsertStatus(ctx, StatusUpdate{
		Author:    p.Actor,
		SportID:   sportID,
		TeamID:    teamID,
		Text:      text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return StatusUpdate{}, fmt.Errorf("insert status: %w", err)
	}

	if err := s.Stats.IncStatusCount(ctx, p.Actor); err != nil {
		s.Logger.Error("Could not increment status count", "actor", p.Actor, "error", err.Error())
	}
	s.metrics().StatusAdded(!u.Personal())
	s.Logger.Info("Status added", "id", u.ID, "actor", p.Actor, "sport_id", sportID, "team_id", teamID)

	return u, nil
}

// DeleteStatus deletes the status update with the given id. Deleting an
// update that does not exist is a no-op. The author's status count is
// decremented, which is not necessarily p's.
func (s *Service) DeleteStatus(ctx context.Context, p Principal, id int64) error {
	if s.readOnly() {
		return ErrReadOnly
	}
	if p.Blocked {
		return ErrForbidden
	}
	if id <= 0 {
		return fmt.Errorf("%w: status id %d", ErrValidation, id)
	}

	u, err := s.Store.GetStatus(ctx, id, p.Actor)
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}
	if u == nil {
		return nil
	}
	if !p.CanDelete(u.Author) {
		return ErrForbidden
	}

	deleted, err := s.Store.DeleteStatus(ctx, id)
	if err != nil {
		return fmt.Errorf("delete status: %w", err)
	}
	if deleted == nil {
		// Deleted concurrently.
		return nil
	}

	if err := s.Stats.DecStatusCount(ctx, deleted.Author); err != nil {
		s.Logger.Error("Could not decrement status count", "actor", deleted.Author, "error", err.Error())
	}
	s.metrics().StatusDeleted()
	s.Logger.Info("Status deleted", "id", id, "author", deleted.Author, "actor", p.Actor)

	return nil
}

// StatusMessage returns a single status update as seen by viewer, or nil if
// it does not exist.
func (s *Service) StatusMessage(ctx context.Context, viewer Principal, id int64) (*StatusUpdate, error) {
	if id <= 0 {
		return nil, nil
	}
	u, err := s.Store.GetStatus(ctx, id, viewer.Actor)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return u, nil
}

// StatusMessages returns a page of status updates, newest first. Zero
// author, sportID and teamID disable the respective filter.
func (s *Service) StatusMessages(ctx context.Context, viewer Principal, author, sportID, teamID int64, limit, page int) ([]StatusUpdate, error) {
	f, err := s.filter(ctx, author, sportID, teamID)
	if err != nil {
		return nil, err
	}
	f.Viewer = viewer.Actor

	offset := 0
	if limit > 0 {
		offset = pager.Offset(page, limit)
	}
	us, err := s.Store.ListStatuses(ctx, f, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return us, nil
}

// NetworkUpdatesCount returns the number of status updates in a sport or
// team network.
func (s *Service) NetworkUpdatesCount(ctx context.Context, sportID, teamID int64) (int, error) {
	return s.FeedCount(ctx, 0, sportID, teamID)
}

// FeedCount returns the number of status updates matching the same filters
// as StatusMessages.
func (s *Service) FeedCount(ctx context.Context, author, sportID, teamID int64) (int, error) {
	f, err := s.filter(ctx, author, sportID, teamID)
	if err != nil {
		return 0, err
	}
	n, err := s.Store.CountStatuses(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count statuses: %w", err)
	}
	return n, nil
}

// UserStatusCount returns the number of status updates written by actor.
// The statistics aggregate is asked first; the store is counted when it
// is unavailable.
func (s *Service) UserStatusCount(ctx context.Context, actor int64) (int, error) {
	n, err := s.Stats.StatusCount(ctx, actor)
	if err == nil {
		return int(n), nil
	}
	s.Logger.Warn("Could not get status count", "actor", actor, "error", err.Error())

	c, err := s.Store.CountStatuses(ctx, Filter{Author: actor})
	if err != nil {
		return 0, fmt.Errorf("count statuses: %w", err)
	}
	return c, nil
}

// NetworkName returns the display name of a sport or team network.
func (s *Service) NetworkName(ctx context.Context, sportID, teamID int64) (string, error) {
	name, err := s.Networks.NetworkName(ctx, sportID, teamID)
	if err != nil {
		return "", fmt.Errorf("network name: %w", err)
	}
	return name, nil
}

func (s *Service) filter(ctx context.Context, author, sportID, teamID int64) (Filter, error) {
	f := Filter{Author: author, SportID: sportID, TeamID: teamID}
	if f.SportNetwork() {
		teams, err := s.Networks.SportTeams(ctx, sportID)
		if err != nil {
			return Filter{}, fmt.Errorf("sport teams: %w", err)
		}
		f.SportTeams = teams
	}
	return f, nil
}

// AddStatusVote records p's vote on a status update. It returns nil without
// an error when the vote is rejected: p is anonymous, p wrote the update,
// the update does not exist or p already voted on it.
func (s *Service) AddStatusVote(ctx context.Context, p Principal, statusID int64, score int) (*Vote, error) {
	if s.readOnly() {
		return nil, ErrReadOnly
	}
	if p.Blocked {
		return nil, ErrForbidden
	}
	if score != 1 && score != -1 {
		return nil, fmt.Errorf("%w: score %d", ErrValidation, score)
	}
	if !p.Registered() {
		s.metrics().VoteCast(VoteAnonymous)
		return nil, nil
	}

	u, err := s.Store.GetStatus(ctx, statusID, p.Actor)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	switch {
	case u == nil:
		s.metrics().VoteCast(VoteMissing)
		return nil, nil
	case u.Author == p.Actor:
		s.metrics().VoteCast(VoteSelf)
		return nil, nil
	case !p.CanVote(u.Author, u.Voted):
		s.metrics().VoteCast(VoteDuplicate)
		return nil, nil
	}

	v, err := s.Store.InsertVote(ctx, Vote{
		Voter:          p.Actor,
		StatusUpdateID: statusID,
		Score:          score,
		VotedAt:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	if v == nil {
		s.metrics().VoteCast(VoteDuplicate)
		return nil, nil
	}

	s.metrics().VoteCast(VoteAccepted)
	s.Logger.Info("Vote added", "id", v.ID, "status_id", statusID, "actor", p.Actor, "score", score)
	return v, nil
}

// HasVoted reports whether voter voted on the status update.
func (s *Service) HasVoted(ctx context.Context, voter, statusID int64) (bool, error) {
	ok, err := s.Store.HasVoted(ctx, voter, statusID)
	if err != nil {
		return false, fmt.Errorf("has voted: %w", err)
	}
	return ok, nil
}

// VoteTally returns the vote counters of a status update, or nil if it does
// not exist.
func (s *Service) VoteTally(ctx context.Context, statusID int64) (*Tally, error) {
	t, err := s.Store.GetTally(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("get tally: %w", err)
	}
	return t, nil
}

// Voters returns who voted on a status update, most recent vote first.
func (s *Service) Voters(ctx context.Context, statusID int64) ([]Voter, error) {
	vs, err := s.Store.ListVoters(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	return vs, nil
}

// Recount rebuilds every author's status count from the store and returns
// the number of authors written.
func (s *Service) Recount(ctx context.Context) (int, error) {
	counts, err := s.Store.CountByAuthor(ctx)
	if err != nil {
		return 0, fmt.Errorf("count by author: %w", err)
	}
	if err := s.Stats.SetStatusCounts(ctx, counts); err != nil {
		return 0, fmt.Errorf("set status counts: %w", err)
	}
	s.Logger.Info("Status counts rebuilt", "authors", len(counts))
	return len(counts), nil
}

type nopRecorder struct{}

func (nopRecorder) StatusAdded(bool) {}
func (nopRecorder) StatusDeleted() {}
func (nopRecorder) VoteCast(string) {}
