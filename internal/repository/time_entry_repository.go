package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-crm/internal/domain"
)

// TimeEntryRepository persists logged work intervals.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	Update(ctx context.Context, entry *domain.TimeEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.TimeEntry, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeEntry, error)
}

type timeEntryRepository struct {
	pool *pgxpool.Pool
}

// NewTimeEntryRepository constructs repository.
func NewTimeEntryRepository(pool *pgxpool.Pool) TimeEntryRepository {
	return &timeEntryRepository{pool: pool}
}

const timeEntrySelect = `
        SELECT e.id, e.ticket_id, e.technician_id, e.check_in, e.check_out, e.duration_minutes, e.notes,
               e.is_manual, e.billable, e.billable_amount, e.created_by_id, e.created_at, e.updated_at, t.name
        FROM time_entries e JOIN technicians t ON t.id = e.technician_id`

func (r *timeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        INSERT INTO time_entries (ticket_id, technician_id, check_in, check_out, duration_minutes, notes, is_manual, billable, billable_amount, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.TechnicianID,
		entry.CheckIn,
		entry.CheckOut,
		entry.DurationMinutes,
		entry.Notes,
		entry.IsManual,
		entry.Billable,
		entry.BillableAmount,
		entry.CreatedByID,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *timeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        UPDATE time_entries SET technician_id=$1, check_in=$2, check_out=$3, duration_minutes=$4, notes=$5,
            billable=$6, billable_amount=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.TechnicianID,
		entry.CheckIn,
		entry.CheckOut,
		entry.DurationMinutes,
		entry.Notes,
		entry.Billable,
		entry.BillableAmount,
		entry.ID,
	).Scan(&entry.UpdatedAt)
}

func (r *timeEntryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM time_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *timeEntryRepository) GetByID(ctx context.Context, id string) (*domain.TimeEntry, error) {
	rows, err := r.pool.Query(ctx, timeEntrySelect+` WHERE e.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries, err := scanTimeEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &entries[0], nil
}

func (r *timeEntryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeEntry, error) {
	rows, err := r.pool.Query(ctx, timeEntrySelect+` WHERE e.ticket_id=$1 ORDER BY e.check_in ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimeEntries(rows)
}

func scanTimeEntries(rows pgx.Rows) ([]domain.TimeEntry, error) {
	var result []domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		if err := rows.Scan(
			&e.ID,
			&e.TicketID,
			&e.TechnicianID,
			&e.CheckIn,
			&e.CheckOut,
			&e.DurationMinutes,
			&e.Notes,
			&e.IsManual,
			&e.Billable,
			&e.BillableAmount,
			&e.CreatedByID,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.TechnicianName,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
