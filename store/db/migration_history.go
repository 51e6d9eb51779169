package db

import (
	"context"

	"github.com/yomu-app/yomu/store"
)

func (d *DB) FindMigrationHistoryList(ctx context.Context, _ *store.FindMigrationHistory) ([]*store.MigrationHistory, error) {
	exist, err := d.checkTableExists(ctx, "migration_history")
	if err != nil {
		return nil, err
	}
	if !exist {
		if err := d.createMigrationHistoryTable(ctx); err != nil {
			return nil, err
		}
	}

	query := "SELECT version, created_ts FROM migration_history ORDER BY created_ts DESC"
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*store.MigrationHistory, 0)
	for rows.Next() {
		var migrationHistory store.MigrationHistory
		if err := rows.Scan(
			&migrationHistory.Version,
			&migrationHistory.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &migrationHistory)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpsertMigrationHistory(ctx context.Context, upsert *store.UpsertMigrationHistory) (*store.MigrationHistory, error) {
	exist, err := d.checkTableExists(ctx, "migration_history")
	if err != nil {
		return nil, err
	}
	if !exist {
		if err := d.createMigrationHistoryTable(ctx); err != nil {
			return nil, err
		}
	}

	stmt := `
		INSERT INTO migration_history (version)
		VALUES (?)
		ON CONFLICT(version) DO UPDATE
		SET version = excluded.version
		RETURNING version, created_ts
	`
	var migrationHistory store.MigrationHistory
	if err := d.QueryRowContext(ctx, stmt, upsert.Version).Scan(
		&migrationHistory.Version,
		&migrationHistory.CreatedTs,
	); err != nil {
		return nil, err
	}

	return &migrationHistory, nil
}

func (d *DB) checkTableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	err := d.QueryRowContext(ctx,
		"SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = ?",
		tableName,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (d *DB) createMigrationHistoryTable(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS migration_history (
			version TEXT NOT NULL PRIMARY KEY,
			created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`
	_, err := d.ExecContext(ctx, stmt)
	return err
}
