package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-crm/internal/domain"
)

// AssignmentRepository stores technician assignments on tickets.
// Add with IsLead set demotes the current lead in the same transaction.
type AssignmentRepository interface {
	Add(ctx context.Context, assignment *domain.TicketAssignment) error
	Remove(ctx context.Context, ticketID, technicianID string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error)
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

func (r *assignmentRepository) Add(ctx context.Context, assignment *domain.TicketAssignment) error {
	const query = `
        INSERT INTO ticket_assignments (ticket_id, technician_id, is_lead, assigned_by_id)
        VALUES ($1,$2,$3,$4)
        RETURNING assigned_at`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if assignment.IsLead {
		if _, err := tx.Exec(ctx, `UPDATE ticket_assignments SET is_lead=FALSE WHERE ticket_id=$1 AND is_lead`, assignment.TicketID); err != nil {
			return err
		}
	}
	if err := tx.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.TechnicianID,
		assignment.IsLead,
		assignment.AssignedByID,
	).Scan(&assignment.AssignedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *assignmentRepository) Remove(ctx context.Context, ticketID, technicianID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_assignments WHERE ticket_id=$1 AND technician_id=$2`, ticketID, technicianID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	const query = `
        SELECT a.ticket_id, a.technician_id, a.is_lead, a.assigned_by_id, a.assigned_at, t.name
        FROM ticket_assignments a JOIN technicians t ON t.id = a.technician_id
        WHERE a.ticket_id=$1 ORDER BY a.is_lead DESC, a.assigned_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAssignment
	for rows.Next() {
		var a domain.TicketAssignment
		if err := rows.Scan(&a.TicketID, &a.TechnicianID, &a.IsLead, &a.AssignedByID, &a.AssignedAt, &a.TechnicianName); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
