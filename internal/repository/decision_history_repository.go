package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdesk/transcript-ledger/internal/domain"
)

// DecisionHistoryRepository stores the audit trail of reaction decisions.
type DecisionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.DecisionEntry) error
	ListByTicket(ctx context.Context, ticketNumber string) ([]domain.DecisionEntry, error)
}

type decisionHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewDecisionHistoryRepository builds repository.
func NewDecisionHistoryRepository(pool *pgxpool.Pool) DecisionHistoryRepository {
	return &decisionHistoryRepository{pool: pool}
}

func (r *decisionHistoryRepository) Create(ctx context.Context, entry *domain.DecisionEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO decision_history (id, ticket_number, field, value, actor_id, message_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.TicketNumber,
		entry.Field,
		entry.Value,
		entry.ActorID,
		entry.MessageID,
	).Scan(&entry.CreatedAt)
}

func (r *decisionHistoryRepository) ListByTicket(ctx context.Context, ticketNumber string) ([]domain.DecisionEntry, error) {
	const query = `
        SELECT id, ticket_number, field, value, actor_id, message_id, created_at
        FROM decision_history WHERE ticket_number=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DecisionEntry
	for rows.Next() {
		var entry domain.DecisionEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketNumber,
			&entry.Field,
			&entry.Value,
			&entry.ActorID,
			&entry.MessageID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
