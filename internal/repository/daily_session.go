package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DailySessionRepository persists the one-session-per-day selection. It
// holds the pool directly because SaveSelection needs a transaction.
type DailySessionRepository struct {
	pool *pgxpool.Pool
}

func NewDailySessionRepository(pool *pgxpool.Pool) *DailySessionRepository {
	return &DailySessionRepository{pool: pool}
}

func (r *DailySessionRepository) GetSession(ctx context.Context, sessionDate string) (*domain.DailySession, error) {
	var s domain.DailySession
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_date::text, insight_ids, created_at
		 FROM daily_sessions WHERE session_date = $1::date`,
		sessionDate,
	).Scan(&s.ID, &s.SessionDate, &s.InsightIDs, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// SaveSelection inserts the session and stamps its insights as shown, both
// in one transaction. The unique constraint on session_date decides races:
// when another session for the day already committed, nothing is written
// and the winning session is returned instead.
func (r *DailySessionRepository) SaveSelection(ctx context.Context, session *domain.DailySession) (*domain.DailySession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`INSERT INTO daily_sessions (id, session_date, insight_ids, created_at)
		 VALUES ($1, $2::date, $3, $4)
		 ON CONFLICT (session_date) DO NOTHING`,
		session.ID, session.SessionDate, session.InsightIDs, session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cmdTag.RowsAffected() == 0 {
		// Lost the race; surface the committed winner.
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return nil, err
		}
		winner, err := r.GetSession(ctx, session.SessionDate)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, domain.ErrSessionNotFound
		}
		return winner, nil
	}

	if len(session.InsightIDs) > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE insights SET last_shown = $1 WHERE id = ANY($2)`,
			time.Now().UTC(), session.InsightIDs,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}
