package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-crm/internal/domain"
)

// ScheduleRepository persists weekly planner slots.
type ScheduleRepository interface {
	Create(ctx context.Context, slot *domain.ScheduleSlot) error
	GetByID(ctx context.Context, id string) (*domain.ScheduleSlot, error)
	UpdateStatus(ctx context.Context, id string, status domain.SlotStatus) error
	ListRange(ctx context.Context, from, to time.Time, technicianID *string) ([]domain.ScheduleSlot, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository constructs repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

const slotSelect = `
        SELECT s.id, s.ticket_id, s.technician_id, s.starts_at, s.ends_at, s.status, s.notes, s.created_by_id, s.created_at,
               k.ticket_number, k.title, t.name
        FROM schedule_slots s
        JOIN service_tickets k ON k.id = s.ticket_id
        JOIN technicians t ON t.id = s.technician_id`

func (r *scheduleRepository) Create(ctx context.Context, slot *domain.ScheduleSlot) error {
	const query = `
        INSERT INTO schedule_slots (ticket_id, technician_id, starts_at, ends_at, status, notes, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		slot.TicketID,
		slot.TechnicianID,
		slot.StartsAt,
		slot.EndsAt,
		slot.Status,
		slot.Notes,
		slot.CreatedByID,
	).Scan(&slot.ID, &slot.CreatedAt)
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.ScheduleSlot, error) {
	rows, err := r.pool.Query(ctx, slotSelect+` WHERE s.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots, err := scanSlots(rows)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &slots[0], nil
}

func (r *scheduleRepository) UpdateStatus(ctx context.Context, id string, status domain.SlotStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE schedule_slots SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRange returns non-cancelled slots intersecting [from, to).
func (r *scheduleRepository) ListRange(ctx context.Context, from, to time.Time, technicianID *string) ([]domain.ScheduleSlot, error) {
	query := slotSelect + ` WHERE s.status <> 'CANCELLED' AND s.starts_at < $2 AND s.ends_at > $1`
	args := []any{from, to}
	if technicianID != nil {
		args = append(args, *technicianID)
		query += ` AND s.technician_id = $3`
	}
	query += ` ORDER BY s.starts_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func scanSlots(rows pgx.Rows) ([]domain.ScheduleSlot, error) {
	var result []domain.ScheduleSlot
	for rows.Next() {
		var s domain.ScheduleSlot
		if err := rows.Scan(
			&s.ID,
			&s.TicketID,
			&s.TechnicianID,
			&s.StartsAt,
			&s.EndsAt,
			&s.Status,
			&s.Notes,
			&s.CreatedByID,
			&s.CreatedAt,
			&s.TicketNumber,
			&s.TicketTitle,
			&s.TechnicianName,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
