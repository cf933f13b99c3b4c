package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/service-crm/internal/domain"
)

// ContactRepository defines persistence access for customer contacts.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	Search(ctx context.Context, term string, limit int) ([]domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository returns a Postgres-backed implementation.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (first_name, last_name, email, phone, company, address)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Company,
		contact.Address,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = `
        SELECT id, first_name, last_name, email, phone, company, address, created_at, updated_at
        FROM contacts WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &contacts[0], nil
}

// Search matches names, email, phone and company; prefix matches on names rank first.
func (r *contactRepository) Search(ctx context.Context, term string, limit int) ([]domain.Contact, error) {
	const query = `
        SELECT id, first_name, last_name, email, phone, company, address, created_at, updated_at
        FROM contacts
        WHERE LOWER(first_name) LIKE $1 ESCAPE '\' OR LOWER(last_name) LIKE $1 ESCAPE '\'
           OR LOWER(first_name || ' ' || last_name) LIKE $1 ESCAPE '\'
           OR LOWER(email) LIKE $1 ESCAPE '\' OR phone LIKE $1 ESCAPE '\'
           OR LOWER(company) LIKE $1 ESCAPE '\'
        ORDER BY (LOWER(first_name) LIKE $2 ESCAPE '\' OR LOWER(last_name) LIKE $2 ESCAPE '\') DESC,
                 last_name, first_name
        LIMIT $3`
	term = escapeLike(strings.ToLower(term))
	rows, err := r.pool.Query(ctx, query, "%"+term+"%", term+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

func scanContacts(rows pgx.Rows) ([]domain.Contact, error) {
	var result []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Phone,
			&c.Company,
			&c.Address,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
