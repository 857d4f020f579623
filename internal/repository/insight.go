package repository

import (
	"context"
	"errors"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// eligibleFilter is the canonical SQL predicate for insights that may
// surface in search or daily results. Junk and personal items stay stored
// but never leave the store through these queries.
const eligibleFilter = `eligible = TRUE AND category NOT IN ('junk', 'personal')`

const insightColumns = `id, content, extracted_text, note, source_url, category, tags, quality_score, eligible, owner_id, session_token, last_shown, saved_at`

type InsightRepository struct {
	db dbtx
}

func NewInsightRepository(pool *pgxpool.Pool) *InsightRepository {
	return &InsightRepository{db: pool}
}

func NewInsightRepositoryWithTx(tx pgx.Tx) *InsightRepository {
	return &InsightRepository{db: tx}
}

func (r *InsightRepository) Create(ctx context.Context, i *domain.Insight) error {
	var embedding any
	if len(i.Embedding) > 0 {
		embedding = pgvector.NewVector(i.Embedding)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO insights (id, content, extracted_text, note, source_url, category, tags, quality_score, eligible, owner_id, session_token, embedding, last_shown, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		i.ID, i.Content, i.ExtractedText, i.Note, i.SourceURL, i.Category, i.Tags, i.QualityScore, i.Eligible,
		nullableString(i.OwnerID), nullableString(i.SessionToken), embedding, i.LastShown, i.SavedAt,
	)
	return err
}

func (r *InsightRepository) GetByID(ctx context.Context, id string) (*domain.Insight, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE id = $1`,
		id,
	)
	insight, err := scanInsight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsightNotFound
		}
		return nil, err
	}
	return insight, nil
}

// GetByIDs returns insights in the order of the given IDs. IDs that no
// longer resolve are silently omitted.
func (r *InsightRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Insight, error) {
	if len(ids) == 0 {
		return []*domain.Insight{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fetched, err := scanInsightRows(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Insight, len(fetched))
	for _, insight := range fetched {
		byID[insight.ID] = insight
	}

	ordered := make([]*domain.Insight, 0, len(ids))
	for _, id := range ids {
		if insight, ok := byID[id]; ok {
			ordered = append(ordered, insight)
		}
	}
	return ordered, nil
}

// ListEligible returns every insight that may appear in lexical search.
func (r *InsightRepository) ListEligible(ctx context.Context) ([]*domain.Insight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE `+eligibleFilter+` ORDER BY saved_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsightRows(rows)
}

// ListEmbedded returns eligible insights carrying an embedding, narrowed
// to the scope. A session token wins over an owner; an owner scope also
// includes unowned rows; the zero scope reads the whole library.
func (r *InsightRepository) ListEmbedded(ctx context.Context, scope domain.Scope) ([]*domain.Insight, error) {
	query := `SELECT ` + insightColumns + `, embedding FROM insights
		 WHERE ` + eligibleFilter + ` AND embedding IS NOT NULL`
	args := []any{}

	switch {
	case scope.SessionToken != "":
		query += ` AND session_token = $1`
		args = append(args, scope.SessionToken)
	case scope.OwnerID != "":
		query += ` AND (owner_id = $1 OR owner_id IS NULL)`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY saved_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Insight
	for rows.Next() {
		insight, err := scanInsightWithEmbedding(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, insight)
	}
	return results, rows.Err()
}

// ListDailyCandidates returns the highest-quality eligible insights not
// already shown on the given day.
func (r *InsightRepository) ListDailyCandidates(ctx context.Context, sessionDate string, limit int) ([]*domain.Insight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+insightColumns+` FROM insights
		 WHERE `+eligibleFilter+` AND (last_shown IS NULL OR last_shown::date IS DISTINCT FROM $1::date)
		 ORDER BY quality_score DESC, saved_at DESC
		 LIMIT $2`,
		sessionDate, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsightRows(rows)
}

// ListUnembedded returns eligible insights without an embedding whose best
// text is long enough to embed.
func (r *InsightRepository) ListUnembedded(ctx context.Context, limit int) ([]*domain.Insight, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+insightColumns+` FROM insights
		 WHERE `+eligibleFilter+` AND embedding IS NULL
		   AND char_length(coalesce(nullif(extracted_text, ''), content)) >= 20
		 ORDER BY saved_at ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsightRows(rows)
}

func (r *InsightRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE insights SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrInsightNotFound
	}
	return nil
}

func (r *InsightRepository) CountEligible(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM insights WHERE `+eligibleFilter,
	).Scan(&count)
	return count, err
}

func (r *InsightRepository) CountByCategory(ctx context.Context) (map[domain.Category]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, count(*) FROM insights WHERE `+eligibleFilter+` GROUP BY category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Category]int)
	for rows.Next() {
		var category domain.Category
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// TopTags returns the most used tags across eligible insights.
func (r *InsightRepository) TopTags(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tag FROM insights, unnest(tags) AS tag
		 WHERE `+eligibleFilter+`
		 GROUP BY tag ORDER BY count(*) DESC, tag ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// ListWithCursor pages eligible insights by save time, newest first.
func (r *InsightRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Insight], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+insightColumns+` FROM insights
			 WHERE `+eligibleFilter+` AND (saved_at, id) < ($1, $2)
			 ORDER BY saved_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+insightColumns+` FROM insights
			 WHERE `+eligibleFilter+`
			 ORDER BY saved_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanInsightRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.SavedAt)
	}

	return &pagination.PageResult[*domain.Insight]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

func scanInsight(row pgx.Row) (*domain.Insight, error) {
	var i domain.Insight
	var sourceURL, note, extractedText, ownerID, sessionToken *string
	err := row.Scan(&i.ID, &i.Content, &extractedText, &note, &sourceURL, &i.Category, &i.Tags,
		&i.QualityScore, &i.Eligible, &ownerID, &sessionToken, &i.LastShown, &i.SavedAt)
	if err != nil {
		return nil, err
	}
	if extractedText != nil {
		i.ExtractedText = *extractedText
	}
	if note != nil {
		i.Note = *note
	}
	if sourceURL != nil {
		i.SourceURL = *sourceURL
	}
	if ownerID != nil {
		i.OwnerID = *ownerID
	}
	if sessionToken != nil {
		i.SessionToken = *sessionToken
	}
	return &i, nil
}

func scanInsightWithEmbedding(row pgx.Row) (*domain.Insight, error) {
	var i domain.Insight
	var sourceURL, note, extractedText, ownerID, sessionToken *string
	var embedding pgvector.Vector
	err := row.Scan(&i.ID, &i.Content, &extractedText, &note, &sourceURL, &i.Category, &i.Tags,
		&i.QualityScore, &i.Eligible, &ownerID, &sessionToken, &i.LastShown, &i.SavedAt, &embedding)
	if err != nil {
		return nil, err
	}
	if extractedText != nil {
		i.ExtractedText = *extractedText
	}
	if note != nil {
		i.Note = *note
	}
	if sourceURL != nil {
		i.SourceURL = *sourceURL
	}
	if ownerID != nil {
		i.OwnerID = *ownerID
	}
	if sessionToken != nil {
		i.SessionToken = *sessionToken
	}
	i.Embedding = embedding.Slice()
	return &i, nil
}

func scanInsightRows(rows pgx.Rows) ([]*domain.Insight, error) {
	var results []*domain.Insight
	for rows.Next() {
		insight, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, insight)
	}
	return results, rows.Err()
}
