package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/events"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Ticket), args.Int(1), args.Error(2)
}

func (m *MockTicketRepository) Stats(ctx context.Context, dayStart time.Time) (*domain.TicketStats, error) {
	args := m.Called(ctx, dayStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketStats), args.Error(1)
}

// MockContactRepository is a mock implementation of ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) Search(ctx context.Context, term string, limit int) ([]domain.Contact, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

// In-memory fakes for repositories whose state the tests inspect.

type fakeTechnicians struct {
	mu    sync.Mutex
	items map[string]*domain.Technician
}

func newFakeTechnicians(techs ...domain.Technician) *fakeTechnicians {
	f := &fakeTechnicians{items: map[string]*domain.Technician{}}
	for i := range techs {
		t := techs[i]
		f.items[t.ID] = &t
	}
	return f
}

func (f *fakeTechnicians) Create(_ context.Context, tech *domain.Technician) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tech.ID == "" {
		tech.ID = fmt.Sprintf("tech-%d", len(f.items)+1)
	}
	c := *tech
	f.items[tech.ID] = &c
	return nil
}

func (f *fakeTechnicians) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *t
	return &c, nil
}

func (f *fakeTechnicians) GetByEmail(_ context.Context, email string) (*domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.Email == email {
			c := *t
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTechnicians) List(_ context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Technician
	for _, t := range f.items {
		if filter.Active != nil && t.Active != *filter.Active {
			continue
		}
		if filter.CategoryID != nil && t.SkillLevel(*filter.CategoryID) == 0 {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.CategoryID != nil {
			li, lj := out[i].SkillLevel(*filter.CategoryID), out[j].SkillLevel(*filter.CategoryID)
			if li != lj {
				return li > lj
			}
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeTechnicians) SetSkill(_ context.Context, technicianID string, skill domain.TechnicianSkill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[technicianID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range t.Skills {
		if t.Skills[i].CategoryID == skill.CategoryID {
			t.Skills[i].Level = skill.Level
			return nil
		}
	}
	t.Skills = append(t.Skills, skill)
	return nil
}

type fakeAssignments struct {
	items     []domain.TicketAssignment
	leadSwaps int
	addErr    error
}

func (f *fakeAssignments) Add(_ context.Context, a *domain.TicketAssignment) error {
	if f.addErr != nil {
		return f.addErr
	}
	if a.IsLead {
		f.leadSwaps++
		for i := range f.items {
			if f.items[i].TicketID == a.TicketID {
				f.items[i].IsLead = false
			}
		}
	}
	a.AssignedAt = time.Now()
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeAssignments) Remove(_ context.Context, ticketID, technicianID string) error {
	for i, a := range f.items {
		if a.TicketID == ticketID && a.TechnicianID == technicianID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeAssignments) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAssignment, error) {
	var out []domain.TicketAssignment
	for _, a := range f.items {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeTimeEntries struct {
	items map[string]*domain.TimeEntry
	seq   int
}

func newFakeTimeEntries() *fakeTimeEntries {
	return &fakeTimeEntries{items: map[string]*domain.TimeEntry{}}
}

func (f *fakeTimeEntries) Create(_ context.Context, e *domain.TimeEntry) error {
	f.seq++
	e.ID = fmt.Sprintf("entry-%d", f.seq)
	c := *e
	f.items[e.ID] = &c
	return nil
}

func (f *fakeTimeEntries) Update(_ context.Context, e *domain.TimeEntry) error {
	if _, ok := f.items[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	c := *e
	f.items[e.ID] = &c
	return nil
}

func (f *fakeTimeEntries) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeTimeEntries) GetByID(_ context.Context, id string) (*domain.TimeEntry, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *e
	return &c, nil
}

func (f *fakeTimeEntries) ListByTicket(_ context.Context, ticketID string) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for _, e := range f.items {
		if e.TicketID == ticketID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

type fakeSlots struct {
	items map[string]*domain.ScheduleSlot
	seq   int
}

func newFakeSlots(slots ...domain.ScheduleSlot) *fakeSlots {
	f := &fakeSlots{items: map[string]*domain.ScheduleSlot{}}
	for i := range slots {
		s := slots[i]
		f.items[s.ID] = &s
	}
	return f
}

func (f *fakeSlots) Create(_ context.Context, s *domain.ScheduleSlot) error {
	f.seq++
	s.ID = fmt.Sprintf("slot-%d", f.seq)
	c := *s
	f.items[s.ID] = &c
	return nil
}

func (f *fakeSlots) GetByID(_ context.Context, id string) (*domain.ScheduleSlot, error) {
	s, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *s
	return &c, nil
}

func (f *fakeSlots) UpdateStatus(_ context.Context, id string, status domain.SlotStatus) error {
	s, ok := f.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Status = status
	return nil
}

func (f *fakeSlots) ListRange(_ context.Context, from, to time.Time, technicianID *string) ([]domain.ScheduleSlot, error) {
	var out []domain.ScheduleSlot
	for _, s := range f.items {
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
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

type fakeActivity struct {
	items []domain.Activity
}

func (f *fakeActivity) Create(_ context.Context, a *domain.Activity) error {
	a.ID = fmt.Sprintf("act-%d", len(f.items)+1)
	a.CreatedAt = time.Now()
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeActivity) ListByTicket(_ context.Context, ticketID string, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		if f.items[i].TicketID == ticketID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

type fakeCategories struct {
	items      []domain.Category
	listCalled int
}

func (f *fakeCategories) Create(_ context.Context, c *domain.Category) error {
	c.ID = fmt.Sprintf("cat-%d", len(f.items)+1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	for _, c := range f.items {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCategories) ListActive(_ context.Context) ([]domain.Category, error) {
	f.listCalled++
	var out []domain.Category
	for _, c := range f.items {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

var (
	dispatcherTech = domain.Technician{ID: "disp-1", Name: "Dana Dispatch", Role: domain.RoleDispatcher, Active: true}
	fieldTech      = domain.Technician{ID: "tech-1", Name: "Sam Field", Role: domain.RoleTechnician, Active: true}
	otherTech      = domain.Technician{ID: "tech-2", Name: "Alex Other", Role: domain.RoleTechnician, Active: true}
)

func errDetails(err error) map[string]any {
	return apperrors.ToDomainError(err).Details
}
