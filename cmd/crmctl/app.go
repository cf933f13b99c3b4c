package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/persistence"
	"github.com/spec-kit/service-crm/internal/repository"
	"github.com/spec-kit/service-crm/internal/service"
	"github.com/spec-kit/service-crm/pkg/debounce"
)

// App holds the operator commands' shared state. The database is opened on
// first use so that help and completion work offline.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	in     io.Reader
	out    io.Writer

	pg        *persistence.Postgres
	tickets   *service.TicketService
	contacts  *service.ContactService
	schedule  *service.ScheduleService
	timesheet *service.TimeService
}

// NewApp builds the CLI application.
func NewApp(cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) *App {
	return &App{cfg: cfg, logger: logger, in: in, out: out}
}

// Close releases the database pool.
func (a *App) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
}

func (a *App) connect(ctx context.Context) error {
	if a.pg != nil {
		return nil
	}
	pg, err := persistence.NewPostgres(ctx, a.cfg.Postgres, a.cfg.Schedule.Timezone, a.logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.pg = pg

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	memCache := cache.NewMemory()
	location := a.cfg.Schedule.Location()

	a.tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		AssignmentRepo: repository.NewAssignmentRepository(pool),
		ContactRepo:    repository.NewContactRepository(pool),
		CategoryRepo:   repository.NewCategoryRepository(pool),
		Location:       location,
		Logger:         a.logger,
	})
	a.contacts = service.NewContactService(service.ContactDependencies{
		ContactRepo:   repository.NewContactRepository(pool),
		Cache:         memCache,
		SearchTTL:     a.cfg.Lookup.SearchTTL(),
		MinQueryChars: a.cfg.Lookup.MinQueryChars,
		MaxResults:    a.cfg.Lookup.MaxResults,
		Logger:        a.logger,
	})
	a.schedule = service.NewScheduleService(service.ScheduleDependencies{
		ScheduleRepo:   repository.NewScheduleRepository(pool),
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		Buffer:         a.cfg.Schedule.Buffer(),
		Location:       location,
		Logger:         a.logger,
	})
	a.timesheet = service.NewTimeService(service.TimeDependencies{
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		TimeEntryRepo:  repository.NewTimeEntryRepository(pool),
		Logger:         a.logger,
	})
	return nil
}

// Migrate applies pending SQL migrations.
func (a *App) Migrate(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	if err := persistence.RunMigrations(ctx, a.pg.PoolHandle(), a.cfg.Postgres.MigrationsDir, a.logger); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

// Stats prints the dashboard counters.
func (a *App) Stats(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	stats, err := a.tickets.GetStats(ctx)
	if err != nil {
		return err
	}
	printStats(a.out, stats)
	return nil
}

// SearchContacts runs a single lookup, or an interactive session reading
// one query per line when query is empty.
func (a *App) SearchContacts(ctx context.Context, query string) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	if query != "" {
		contacts, err := a.contacts.Search(ctx, query)
		if err != nil {
			return err
		}
		printContacts(a.out, contacts)
		return nil
	}
	fmt.Fprintln(a.out, "Type to search contacts, Ctrl-D to quit")
	return searchLoop(ctx, a.in, a.out, a.cfg.Lookup.Debounce(), a.contacts.Search)
}

// Week prints the planning bar for the week containing start.
func (a *App) Week(ctx context.Context, start time.Time, technicianID string) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	var tech *string
	if technicianID != "" {
		tech = &technicianID
	}
	week, err := a.schedule.Week(ctx, start, tech)
	if err != nil {
		return err
	}
	printWeek(a.out, week, a.cfg.Schedule.Location())
	return nil
}

// Timesheet prints the time entries of a ticket.
func (a *App) Timesheet(ctx context.Context, ticketID string) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	sheet, err := a.timesheet.ListByTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	printTimesheet(a.out, sheet)
	return nil
}

type searchFunc func(ctx context.Context, query string) ([]domain.Contact, error)

// searchLoop treats every input line as the current query. Lookups wait for
// delay of quiet input; a newer line cancels the waiting lookup but not one
// already running. At end of input a waiting lookup runs at once and a running
// one is awaited, so the last query always prints before return.
func searchLoop(ctx context.Context, in io.Reader, out io.Writer, delay time.Duration, search searchFunc) error {
	d := debounce.New(delay)
	defer d.Stop()

	var mu sync.Mutex
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		d.Trigger(func() {
			contacts, err := search(ctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(out, "search %q failed: %v\n", query, err)
				return
			}
			fmt.Fprintf(out, "> %s\n", query)
			printContacts(out, contacts)
		})
	}
	d.Flush()
	d.Wait()
	return scanner.Err()
}
