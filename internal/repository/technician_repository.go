package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-crm/internal/domain"
)

// TechnicianRepository handles persistence for technicians and their skills.
type TechnicianRepository interface {
	Create(ctx context.Context, tech *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	GetByEmail(ctx context.Context, email string) (*domain.Technician, error)
	List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error)
	SetSkill(ctx context.Context, technicianID string, skill domain.TechnicianSkill) error
}

// TechnicianFilter defines query params for technician listing.
// With CategoryID set only technicians skilled in it are returned, best first.
type TechnicianFilter struct {
	Active     *bool
	CategoryID *string
	Limit      int
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates the repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `t.id, t.name, t.email, t.phone, t.password_hash, t.role, t.active_flag, t.hourly_rate, t.created_at, t.updated_at`

func (r *technicianRepository) Create(ctx context.Context, tech *domain.Technician) error {
	const query = `
        INSERT INTO technicians (name, email, phone, password_hash, role, active_flag, hourly_rate)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		tech.Name,
		tech.Email,
		tech.Phone,
		tech.PasswordHash,
		tech.Role,
		tech.Active,
		tech.HourlyRate,
	).Scan(&tech.ID, &tech.CreatedAt, &tech.UpdatedAt)
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return r.fetchSingle(ctx, `SELECT `+technicianColumns+` FROM technicians t WHERE t.id=$1`, id)
}

func (r *technicianRepository) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	return r.fetchSingle(ctx, `SELECT `+technicianColumns+` FROM technicians t WHERE LOWER(t.email)=LOWER($1)`, email)
}

func (r *technicianRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Technician, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	techs, err := scanTechnicians(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(techs) == 0 {
		return nil, pgx.ErrNoRows
	}
	if err := r.attachSkills(ctx, techs); err != nil {
		return nil, err
	}
	return &techs[0], nil
}

func (r *technicianRepository) List(ctx context.Context, filter TechnicianFilter) ([]domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians t`
	args := []any{}
	clauses := []string{}
	order := " ORDER BY t.name ASC"

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" JOIN technician_skills s ON s.technician_id = t.id AND s.category_id = $%d", len(args))
		order = " ORDER BY s.level DESC, t.name ASC"
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("t.active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += order

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	techs, err := scanTechnicians(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := r.attachSkills(ctx, techs); err != nil {
		return nil, err
	}
	return techs, nil
}

func (r *technicianRepository) SetSkill(ctx context.Context, technicianID string, skill domain.TechnicianSkill) error {
	const query = `
        INSERT INTO technician_skills (technician_id, category_id, level)
        VALUES ($1,$2,$3)
        ON CONFLICT (technician_id, category_id) DO UPDATE SET level = EXCLUDED.level`
	_, err := r.pool.Exec(ctx, query, technicianID, skill.CategoryID, skill.Level)
	return err
}

func (r *technicianRepository) attachSkills(ctx context.Context, techs []domain.Technician) error {
	if len(techs) == 0 {
		return nil
	}
	ids := make([]string, len(techs))
	index := make(map[string]int, len(techs))
	for i, t := range techs {
		ids[i] = t.ID
		index[t.ID] = i
	}

	const query = `
        SELECT s.technician_id, s.category_id, c.name, s.level
        FROM technician_skills s JOIN categories c ON c.id = s.category_id
        WHERE s.technician_id::text = ANY($1)
        ORDER BY s.level DESC, c.name ASC`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			techID string
			skill  domain.TechnicianSkill
		)
		if err := rows.Scan(&techID, &skill.CategoryID, &skill.CategoryName, &skill.Level); err != nil {
			return err
		}
		if i, ok := index[techID]; ok {
			techs[i].Skills = append(techs[i].Skills, skill)
		}
	}
	return rows.Err()
}

func scanTechnicians(rows pgx.Rows) ([]domain.Technician, error) {
	var result []domain.Technician
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(
			&tech.ID,
			&tech.Name,
			&tech.Email,
			&tech.Phone,
			&tech.PasswordHash,
			&tech.Role,
			&tech.Active,
			&tech.HourlyRate,
			&tech.CreatedAt,
			&tech.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tech)
	}
	return result, rows.Err()
}
