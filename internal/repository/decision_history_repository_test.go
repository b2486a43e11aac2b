package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/persistence"
)

func TestDecisionHistoryRepository(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))

	repo := NewDecisionHistoryRepository(pool)
	number := "t" + uuid.NewString()[:8]

	first := &domain.DecisionEntry{TicketNumber: number, Field: domain.DecisionFieldApproval, Value: "accepted", ActorID: "staff-1", MessageID: "m1"}
	require.NoError(t, repo.Create(ctx, first))
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second := &domain.DecisionEntry{ID: uuid.NewString(), TicketNumber: number, Field: domain.DecisionFieldReferral, Value: "option2", ActorID: "staff-1", MessageID: "m1"}
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.ListByTicket(ctx, number)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].ID)
	require.Equal(t, domain.DecisionFieldReferral, got[1].Field)
	require.Equal(t, second.ID, got[1].ID)

	none, err := repo.ListByTicket(ctx, "missing-"+number)
	require.NoError(t, err)
	require.Empty(t, none)
}
