package repository

import (
	"context"
	"errors"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SynthesisRepository struct {
	db dbtx
}

func NewSynthesisRepository(pool *pgxpool.Pool) *SynthesisRepository {
	return &SynthesisRepository{db: pool}
}

func NewSynthesisRepositoryWithTx(tx pgx.Tx) *SynthesisRepository {
	return &SynthesisRepository{db: tx}
}

func (r *SynthesisRepository) Create(ctx context.Context, s *domain.Synthesis) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO syntheses (id, owner_id, query, body, source_ids, edited_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, nullableString(s.OwnerID), s.Query, s.Body, s.SourceIDs, nullableString(s.EditedBody), s.CreatedAt,
	)
	return err
}

func (r *SynthesisRepository) GetByID(ctx context.Context, id string) (*domain.Synthesis, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, owner_id, query, body, source_ids, edited_body, created_at
		 FROM syntheses WHERE id = $1`,
		id,
	)
	synthesis, err := scanSynthesis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSynthesisNotFound
		}
		return nil, err
	}
	return synthesis, nil
}

// ListWithCursor pages syntheses newest first.
func (r *SynthesisRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Synthesis], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, owner_id, query, body, source_ids, edited_body, created_at
			 FROM syntheses
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, owner_id, query, body, source_ids, edited_body, created_at
			 FROM syntheses
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Synthesis
	for rows.Next() {
		synthesis, err := scanSynthesis(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, synthesis)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &pagination.PageResult[*domain.Synthesis]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

func scanSynthesis(row pgx.Row) (*domain.Synthesis, error) {
	var s domain.Synthesis
	var ownerID, editedBody *string
	err := row.Scan(&s.ID, &ownerID, &s.Query, &s.Body, &s.SourceIDs, &editedBody, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ownerID != nil {
		s.OwnerID = *ownerID
	}
	if editedBody != nil {
		s.EditedBody = *editedBody
	}
	return &s, nil
}
