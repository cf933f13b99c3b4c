package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// ContactService implements customer lookup.
type ContactService struct {
	contacts   repository.ContactRepository
	cache      cache.Cache
	searchTTL  time.Duration
	minChars   int
	maxResults int
	validate   *validator.Validate
	logger     *zap.Logger
}

// ContactDependencies bundles collaborators.
type ContactDependencies struct {
	ContactRepo   repository.ContactRepository
	Cache         cache.Cache
	SearchTTL     time.Duration
	MinQueryChars int
	MaxResults    int
	Logger        *zap.Logger
}

// ContactInput is the payload for a new contact.
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Address   string
}

// NewContactService builds the service.
func NewContactService(deps ContactDependencies) *ContactService {
	minChars := deps.MinQueryChars
	if minChars <= 0 {
		minChars = 2
	}
	maxResults := deps.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	return &ContactService{
		contacts:   deps.ContactRepo,
		cache:      deps.Cache,
		searchTTL:  deps.SearchTTL,
		minChars:   minChars,
		maxResults: maxResults,
		validate:   validator.New(),
		logger:     orNop(deps.Logger),
	}
}

// Search matches contacts by name, email, phone or company.
// Queries shorter than the minimum return nothing without a lookup.
func (s *ContactService) Search(ctx context.Context, query string) ([]domain.Contact, error) {
	term := strings.TrimSpace(query)
	if utf8.RuneCountInString(term) < s.minChars {
		return []domain.Contact{}, nil
	}

	key := cache.ContactSearchKey(strings.ToLower(term))
	var cached []domain.Contact
	if cacheGet(ctx, s.cache, s.logger, key, &cached) {
		return cached, nil
	}

	contacts, err := s.contacts.Search(ctx, term, s.maxResults)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	cacheSet(ctx, s.cache, s.logger, key, contacts, s.searchTTL)
	return contacts, nil
}

// Create validates and stores a contact.
func (s *ContactService) Create(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:     strings.TrimSpace(input.Phone),
		Company:   strings.TrimSpace(input.Company),
		Address:   strings.TrimSpace(input.Address),
	}
	if contact.FirstName == "" && contact.LastName == "" {
		return nil, apperrors.NewValidationError("first or last name is required", map[string]any{"field": "first_name"})
	}
	if contact.Email == "" && contact.Phone == "" {
		return nil, apperrors.NewValidationError("email or phone is required", map[string]any{"field": "email"})
	}
	if contact.Email != "" {
		if err := s.validate.Var(contact.Email, "email"); err != nil {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"field": "email", "value": contact.Email})
		}
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("contact created", zap.String("contact_id", contact.ID))
	return contact, nil
}

// Get returns a contact by id.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "contact", map[string]any{"contact_id": id})
	}
	return contact, nil
}
