package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// TicketFilter captures role-derived listing scope plus optional status filter.
type TicketFilter struct {
	SubmitterID  *string
	AssignedDept *string
	Statuses     []domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create inserts the ticket together with its initial history entry in
	// one transaction.
	Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// AppendStatus atomically appends a history entry and updates the
	// ticket's status (and assigned department when provided). Concurrent
	// appends for the same ticket never drop an entry.
	AppendStatus(ctx context.Context, ticketID string, entry *domain.StatusHistoryEntry, assignedDept *string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, submitter_user_id, submitter_name, title, description,
               phone, file_url, status, assigned_dept, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, initial *domain.StatusHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO tickets (submitter_user_id, submitter_name, title, description, phone, file_url, status, assigned_dept)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.Submitter.UserID,
		ticket.Submitter.Name,
		ticket.Title,
		ticket.Description,
		ticket.Phone,
		ticket.FileURL,
		ticket.Status,
		ticket.AssignedDept,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	initial.TicketID = ticket.ID
	if err := insertHistoryEntry(ctx, tx, initial); err != nil {
		return err
	}
	ticket.History = []domain.StatusHistoryEntry{*initial}

	return tx.Commit(ctx)
}

func insertHistoryEntry(ctx context.Context, q rowQuerier, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO ticket_status_history (ticket_id, status, actor_user_id, actor_name, actor_role, remarks)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.Actor.UserID,
		entry.Actor.Name,
		entry.Actor.Role,
		entry.Remarks,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Submitter.UserID,
		&ticket.Submitter.Name,
		&ticket.Title,
		&ticket.Description,
		&ticket.Phone,
		&ticket.FileURL,
		&ticket.Status,
		&ticket.AssignedDept,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	history, err := r.historyFor(ctx, []string{ticket.ID})
	if err != nil {
		return nil, err
	}
	ticket.History = history[ticket.ID]
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("submitter_user_id=$%d", len(args)))
	}
	if filter.AssignedDept != nil {
		args = append(args, *filter.AssignedDept)
		clauses = append(clauses, fmt.Sprintf("assigned_dept=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	var ids []string
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Submitter.UserID,
			&ticket.Submitter.Name,
			&ticket.Title,
			&ticket.Description,
			&ticket.Phone,
			&ticket.FileURL,
			&ticket.Status,
			&ticket.AssignedDept,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
		ids = append(ids, ticket.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		history, err := r.historyFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range result {
			result[i].History = history[result[i].ID]
		}
	}
	return result, nil
}

func (r *ticketRepository) AppendStatus(ctx context.Context, ticketID string, entry *domain.StatusHistoryEntry, assignedDept *string) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE tickets SET status=$1, assigned_dept=COALESCE($2, assigned_dept), updated_at=NOW()
        WHERE id=$3`
	cmd, err := tx.Exec(ctx, update, entry.Status, assignedDept, ticketID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	entry.TicketID = ticketID
	if err := insertHistoryEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, ticketID)
}

func (r *ticketRepository) historyFor(ctx context.Context, ticketIDs []string) (map[string][]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, status, actor_user_id, actor_name, actor_role, remarks, created_at
        FROM ticket_status_history
        WHERE ticket_id = ANY($1)
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.StatusHistoryEntry, len(ticketIDs))
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Status,
			&entry.Actor.UserID,
			&entry.Actor.Name,
			&entry.Actor.Role,
			&entry.Remarks,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result[entry.TicketID] = append(result[entry.TicketID], entry)
	}
	return result, rows.Err()
}
