package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/wikimedia/mediawiki-extensions-UserStatus/status"
)

var (
	_ status.Store    = (*Postgres)(nil)
	_ status.Networks = (*Postgres)(nil)
)

// errVoted aborts a vote transaction that lost the race against another
// vote of the same user.
var errVoted = errors.New("already voted")

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and ping the DB to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// Close closes the database connection pool.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// InsertStatus inserts a status update into the database. The returned
// update holds auto generated fields, such as the id.
func (pg *Postgres) InsertStatus(ctx context.Context, u status.StatusUpdate) (status.StatusUpdate, error) {
	m := &statusUpdate{
		Author:    u.Author,
		SportID:   u.SportID,
		TeamID:    u.TeamID,
		Text:      u.Text,
		CreatedAt: u.CreatedAt,
	}
	if _, err := pg.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return status.StatusUpdate{}, fmt.Errorf("insert: %w", err)
	}
	return m.StatusUpdate(), nil
}

// DeleteStatus deletes a status update together with its votes.
func (pg *Postgres) DeleteStatus(ctx context.Context, id int64) (*status.StatusUpdate, error) {
	var deleted *status.StatusUpdate
	err := pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row statusUpdate
		err := tx.NewSelect().
			Model(&row).
			Where("su.id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}

		if _, err := tx.NewDelete().Model((*statusVote)(nil)).Where("status_update_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete votes: %w", err)
		}
		if _, err := tx.NewDelete().Model((*statusUpdate)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete: %w", err)
		}

		u := row.StatusUpdate()
		deleted = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetStatus returns a single status update, or nil if it does not exist.
func (pg *Postgres) GetStatus(ctx context.Context, id int64, viewer int64) (*status.StatusUpdate, error) {
	var row statusUpdate
	err := pg.selectStatuses(&row, viewer).
		Where("su.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	u := row.StatusUpdate()
	return &u, nil
}

// ListStatuses returns the status updates matching f, newest first. A
// non-positive limit returns every match.
func (pg *Postgres) ListStatuses(ctx context.Context, f status.Filter, limit, offset int) ([]status.StatusUpdate, error) {
	var rows []statusUpdate
	q := pg.selectStatuses(&rows, f.Viewer).
		Order("su.id DESC")
	q = applyFilter(q, f)
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]status.StatusUpdate, len(rows))
	for i, r := range rows {
		out[i] = r.StatusUpdate()
	}
	return out, nil
}

// CountStatuses returns the number of status updates matching f.
func (pg *Postgres) CountStatuses(ctx context.Context, f status.Filter) (int, error) {
	q := pg.bun.NewSelect().Model((*statusUpdate)(nil))
	n, err := applyFilter(q, f).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CountByAuthor returns the number of status updates of every author.
func (pg *Postgres) CountByAuthor(ctx context.Context) (map[int64]int64, error) {
	var rows []struct {
		Author int64
		N      int64
	}
	err := pg.bun.NewSelect().
		Model((*statusUpdate)(nil)).
		Column("author").
		ColumnExpr("count(*) AS n").
		Group("author").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.Author] = r.N
	}
	return out, nil
}

// InsertVote inserts a vote and increments the matching counter of the
// status update in one transaction. The status update row stays locked
// until the transaction ends, so concurrent votes on it are serialized.
// It returns nil if the status update does not exist or the voter already
// voted on it.
func (pg *Postgres) InsertVote(ctx context.Context, v status.Vote) (*status.Vote, error) {
	var out *status.Vote
	err := pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row statusUpdate
		err := tx.NewSelect().
			Model(&row).
			Column("id").
			Where("su.id = ?", v.StatusUpdateID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock status: %w", err)
		}

		voted, err := tx.NewSelect().
			Model((*statusVote)(nil)).
			Where("voter = ?", v.Voter).
			Where("status_update_id = ?", v.StatusUpdateID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("exists: %w", err)
		}
		if voted {
			return nil
		}

		m := &statusVote{
			Voter:          v.Voter,
			StatusUpdateID: v.StatusUpdateID,
			Score:          v.Score,
			VotedAt:        v.VotedAt,
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return errVoted
			}
			return fmt.Errorf("insert: %w", err)
		}

		counter := "upvote_count"
		if v.Score != 1 {
			counter = "downvote_count"
		}
		_, err = tx.NewUpdate().
			Model((*statusUpdate)(nil)).
			Set("? = ? + 1", bun.Ident(counter), bun.Ident(counter)).
			Where("id = ?", v.StatusUpdateID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update %s: %w", counter, err)
		}

		vote := m.StatusVote()
		out = &vote
		return nil
	})
	if errors.Is(err, errVoted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasVoted reports whether voter voted on the status update.
func (pg *Postgres) HasVoted(ctx context.Context, voter, statusID int64) (bool, error) {
	ok, err := pg.bun.NewSelect().
		Model((*statusVote)(nil)).
		Where("voter = ?", voter).
		Where("status_update_id = ?", statusID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}

// GetTally returns the vote counters of a status update, or nil if it does
// not exist.
func (pg *Postgres) GetTally(ctx context.Context, statusID int64) (*status.Tally, error) {
	var row statusUpdate
	err := pg.bun.NewSelect().
		Model(&row).
		Column("upvote_count", "downvote_count").
		Where("su.id = ?", statusID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &status.Tally{Plus: row.UpvoteCount, Minus: row.DownvoteCount}, nil
}

// ListVoters returns the votes on a status update, most recent first.
func (pg *Postgres) ListVoters(ctx context.Context, statusID int64) ([]status.Voter, error) {
	var votes []statusVote
	err := pg.bun.NewSelect().
		Model(&votes).
		Where("status_update_id = ?", statusID).
		Order("sv.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]status.Voter, len(votes))
	for i, v := range votes {
		out[i] = v.StatusVoter()
	}
	return out, nil
}

// selectStatuses selects status updates into model along with whether
// viewer voted on each of them.
func (pg *Postgres) selectStatuses(model any, viewer int64) *bun.SelectQuery {
	return pg.bun.NewSelect().
		Model(model).
		ColumnExpr("su.*").
		ColumnExpr("EXISTS (SELECT 1 FROM status_votes AS v WHERE v.status_update_id = su.id AND v.voter = ?) AS voted", viewer)
}

// applyFilter adds the conditions of f to q. A sport network matches
// updates posted to the sport itself and updates posted to any of its
// teams.
func applyFilter(q *bun.SelectQuery, f status.Filter) *bun.SelectQuery {
	if f.Author > 0 {
		q = q.Where("su.author = ?", f.Author)
	}
	switch {
	case f.TeamID > 0:
		q = q.Where("su.team_id = ?", f.TeamID)
	case f.SportID > 0:
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("su.sport_id = ? AND su.team_id = 0", f.SportID)
			if len(f.SportTeams) > 0 {
				q = q.WhereOr("su.team_id IN (?)", bun.In(f.SportTeams))
			}
			return q
		})
	}
	return q
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
