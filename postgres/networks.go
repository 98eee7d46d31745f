package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SportTeams returns the ids of the teams registered under a sport.
func (pg *Postgres) SportTeams(ctx context.Context, sportID int64) ([]int64, error) {
	var ids []int64
	err := pg.bun.NewSelect().
		Model((*sportTeam)(nil)).
		Column("id").
		Where("sport_id = ?", sportID).
		Order("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return ids, nil
}

// NetworkName returns the name of a team, or of a sport when teamID is 0.
// Unknown networks have an empty name.
func (pg *Postgres) NetworkName(ctx context.Context, sportID, teamID int64) (string, error) {
	var (
		name string
		err  error
	)
	if teamID > 0 {
		err = pg.bun.NewSelect().Model((*sportTeam)(nil)).Column("name").Where("id = ?", teamID).Scan(ctx, &name)
	} else {
		err = pg.bun.NewSelect().Model((*sport)(nil)).Column("name").Where("id = ?", sportID).Scan(ctx, &name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan: %w", err)
	}
	return name, nil
}
