package http

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
)

// store backs every repository interface with maps.
type store struct {
	mu          sync.Mutex
	seq         int
	tickets     map[string]*domain.Ticket
	contacts    map[string]*domain.Contact
	categories  map[string]*domain.Category
	technicians map[string]*domain.Technician
	assignments []domain.TicketAssignment
	entries     map[string]*domain.TimeEntry
	slots       map[string]*domain.ScheduleSlot
	activity    []domain.Activity

	ticketCreates  int
	contactQueries int
}

func newStore() *store {
	return &store{
		tickets:     map[string]*domain.Ticket{},
		contacts:    map[string]*domain.Contact{},
		categories:  map[string]*domain.Category{},
		technicians: map[string]*domain.Technician{},
		entries:     map[string]*domain.TimeEntry{},
		slots:       map[string]*domain.ScheduleSlot{},
	}
}

func (s *store) nextID() string {
	s.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)
}

type ticketRepo struct{ *store }

func (r ticketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticketCreates++
	t.ID = r.nextID()
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	c := *t
	r.tickets[t.ID] = &c
	return nil
}

func (r ticketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *t
	r.tickets[t.ID] = &c
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (r ticketRepo) List(_ context.Context, f repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (r ticketRepo) Stats(_ context.Context, _ time.Time) (*domain.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &domain.TicketStats{Total: len(r.tickets)}, nil
}

type contactRepo struct{ *store }

func (r contactRepo) Create(_ context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID()
	cc := *c
	r.contacts[c.ID] = &cc
	return nil
}

func (r contactRepo) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cc := *c
	return &cc, nil
}

func (r contactRepo) Search(_ context.Context, term string, limit int) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contactQueries++
	var out []domain.Contact
	for _, c := range r.contacts {
		if strings.Contains(strings.ToLower(c.FullName()), strings.ToLower(term)) && len(out) < limit {
			out = append(out, *c)
		}
	}
	return out, nil
}

type categoryRepo struct{ *store }

func (r categoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID()
	cc := *c
	r.categories[c.ID] = &cc
	return nil
}

func (r categoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cc := *c
	return &cc, nil
}

func (r categoryRepo) ListActive(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Category
	for _, c := range r.categories {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

type technicianRepo struct{ *store }

func (r technicianRepo) Create(_ context.Context, t *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID()
	c := *t
	r.technicians[t.ID] = &c
	return nil
}

func (r technicianRepo) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (r technicianRepo) GetByEmail(_ context.Context, email string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.technicians {
		if t.Email == email {
			c := *t
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r technicianRepo) List(_ context.Context, _ repository.TechnicianFilter) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Technician
	for _, t := range r.technicians {
		out = append(out, *t)
	}
	return out, nil
}

func (r technicianRepo) SetSkill(_ context.Context, _ string, _ domain.TechnicianSkill) error {
	return nil
}

type assignmentRepo struct{ *store }

func (r assignmentRepo) Add(_ context.Context, a *domain.TicketAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, *a)
	return nil
}

func (r assignmentRepo) Remove(_ context.Context, ticketID, technicianID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.assignments {
		if a.TicketID == ticketID && a.TechnicianID == technicianID {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r assignmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketAssignment
	for _, a := range r.assignments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type timeEntryRepo struct{ *store }

func (r timeEntryRepo) Create(_ context.Context, e *domain.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID()
	c := *e
	r.entries[e.ID] = &c
	return nil
}

func (r timeEntryRepo) Update(_ context.Context, e *domain.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *e
	r.entries[e.ID] = &c
	return nil
}

func (r timeEntryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.entries, id)
	return nil
}

func (r timeEntryRepo) GetByID(_ context.Context, id string) (*domain.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *e
	return &c, nil
}

func (r timeEntryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimeEntry
	for _, e := range r.entries {
		if e.TicketID == ticketID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type scheduleRepo struct{ *store }

func (r scheduleRepo) Create(_ context.Context, s *domain.ScheduleSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID()
	c := *s
	r.slots[s.ID] = &c
	return nil
}

func (r scheduleRepo) GetByID(_ context.Context, id string) (*domain.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *s
	return &c, nil
}

func (r scheduleRepo) UpdateStatus(_ context.Context, id string, status domain.SlotStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Status = status
	return nil
}

func (r scheduleRepo) ListRange(_ context.Context, from, to time.Time, technicianID *string) ([]domain.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ScheduleSlot
	for _, s := range r.slots {
		if s.Status == domain.SlotStatusCancelled {
			continue
		}
		if technicianID != nil && s.TechnicianID != *technicianID {
			continue
		}
		if s.StartsAt.Before(to) && s.EndsAt.After(from) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type activityRepo struct{ *store }

func (r activityRepo) Create(_ context.Context, a *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID()
	r.activity = append(r.activity, *a)
	return nil
}

func (r activityRepo) ListByTicket(_ context.Context, ticketID string, limit int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Activity
	for i := len(r.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if r.activity[i].TicketID == ticketID {
			out = append(out, r.activity[i])
		}
	}
	return out, nil
}
