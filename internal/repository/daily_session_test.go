//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fermentlab/insightd/internal/domain"
	"github.com/fermentlab/insightd/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySessionRepository_SaveSelection(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	insightRepo := NewInsightRepository(pool)
	sessionRepo := NewDailySessionRepository(pool)

	first := newTestInsight(domain.CategoryArticle)
	second := newTestInsight(domain.CategoryNote)
	require.NoError(t, insightRepo.Create(ctx, first))
	require.NoError(t, insightRepo.Create(ctx, second))

	session := domain.NewDailySession(uuid.NewString(), "2026-03-14", []string{first.ID, second.ID}, time.Now().UTC().Truncate(time.Microsecond))

	saved, err := sessionRepo.SaveSelection(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, session.ID, saved.ID)

	// selected insights are stamped as shown
	stamped, err := insightRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stamped.LastShown)

	// a second save for the same day returns the committed winner
	rival := domain.NewDailySession(uuid.NewString(), "2026-03-14", []string{second.ID}, time.Now().UTC())
	winner, err := sessionRepo.SaveSelection(ctx, rival)
	require.NoError(t, err)
	assert.Equal(t, session.ID, winner.ID)
	assert.Equal(t, []string{first.ID, second.ID}, winner.InsightIDs)
}

func TestDailySessionRepository_GetSession(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	sessionRepo := NewDailySessionRepository(pool)

	missing, err := sessionRepo.GetSession(ctx, "2026-03-14")
	require.NoError(t, err)
	assert.Nil(t, missing)

	session := domain.NewDailySession(uuid.NewString(), "2026-03-14", []string{}, time.Now().UTC())
	_, err = sessionRepo.SaveSelection(ctx, session)
	require.NoError(t, err)

	found, err := sessionRepo.GetSession(ctx, "2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, session.ID, found.ID)
	assert.Equal(t, "2026-03-14", found.SessionDate)
}
