package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.Postgres)
}

func (r *SQLRepository) Insert(ctx context.Context, rec *models.ArtifactRecord) error {
	query := `INSERT INTO artifacts (id, user_id, parent_id, version, tier, fingerprint, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var parent any
	if rec.ParentID != nil {
		parent = *rec.ParentID
	}
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		rec.ID, rec.UserID, parent, rec.Version, rec.Tier, rec.Fingerprint, string(rec.Body), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.ArtifactRecord, error) {
	query := `SELECT id, user_id, parent_id, version, tier, fingerprint, body, created_at
		FROM artifacts
		WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *SQLRepository) Chain(ctx context.Context, id string, limit int) ([]models.ArtifactRecord, error) {
	query := `WITH RECURSIVE chain (id, user_id, parent_id, version, tier, fingerprint, body, created_at, depth) AS (
			SELECT id, user_id, parent_id, version, tier, fingerprint, body, created_at, 0
			FROM artifacts
			WHERE id = $1
			UNION ALL
			SELECT a.id, a.user_id, a.parent_id, a.version, a.tier, a.fingerprint, a.body, a.created_at, c.depth + 1
			FROM artifacts a
			JOIN chain c ON a.id = c.parent_id
			WHERE c.depth + 1 < $2
		)
		SELECT id, user_id, parent_id, version, tier, fingerprint, body, created_at
		FROM chain
		ORDER BY depth`

	return r.list(ctx, r.dialect.Rebind(query), id, limit)
}

func (r *SQLRepository) Children(ctx context.Context, parentID string) ([]models.ArtifactRecord, error) {
	query := `SELECT id, user_id, parent_id, version, tier, fingerprint, body, created_at
		FROM artifacts
		WHERE parent_id = $1
		ORDER BY created_at, id`

	return r.list(ctx, r.dialect.Rebind(query), parentID)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ArtifactRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.ArtifactRecord, error) {
	var (
		rec     models.ArtifactRecord
		parent  sql.NullString
		body    []byte
		created dbx.NullTime
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &parent, &rec.Version, &rec.Tier, &rec.Fingerprint, &body, &created); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.String
		rec.ParentID = &p
	}
	rec.Body = body
	rec.CreatedAt = created.Time
	return &rec, nil
}
