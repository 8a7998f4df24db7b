package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/repository"
)

const maxListingImages = 12

type ListingInput struct {
	Title       string
	Description string
	Price       int
	Address     string
	ImageURLs   []string
	// Status is the requested lifecycle state from the submit control.
	// Empty means "let the lifecycle rules decide".
	Status string
}

type PublicSearchQuery struct {
	Query    string
	MinPrice int
	MaxPrice int
	Page     int
	PageSize int
}

type AdminListQuery struct {
	Status   string
	Page     int
	PageSize int
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

type PropertyService interface {
	// Create stores a new listing owned by the caller.
	Create(ctx context.Context, caller Caller, in ListingInput) (*domain.Property, error)

	// Update replaces a listing's content. The listing re-enters review
	// unless it is a draft being saved as a draft.
	Update(ctx context.Context, caller Caller, id uint, in ListingInput) (*domain.Property, error)

	Delete(ctx context.Context, caller Caller, id uint) error

	// Approve and Reject change lifecycle state only, never content.
	Approve(ctx context.Context, caller Caller, id uint) (*domain.Property, error)
	Reject(ctx context.Context, caller Caller, id uint) (*domain.Property, error)

	// GetVisible returns the listing if the caller may see it. Listings
	// that are not approved are only visible to their owner and admins;
	// everyone else gets ErrListingNotFound.
	GetVisible(ctx context.Context, caller Caller, id uint) (*domain.Property, error)

	// SearchPublic pages through approved listings.
	SearchPublic(ctx context.Context, q PublicSearchQuery) (repository.PageResult[domain.Property], error)

	// ListOwn returns every listing owned by the caller in any state.
	ListOwn(ctx context.Context, caller Caller) ([]domain.Property, error)

	// ListAll pages through all listings for the moderation queue.
	ListAll(ctx context.Context, caller Caller, q AdminListQuery) (repository.PageResult[domain.Property], error)

	// Contact forwards a buyer inquiry to the listing owner.
	Contact(ctx context.Context, caller Caller, id uint, in ContactInput) error
}

type propertyService struct {
	properties repository.PropertyRepository
	users      repository.UserRepository
	cache      SearchCacheStore
	contact    ContactNotifier
	logger     *slog.Logger
	cacheTTL   time.Duration
}

func NewPropertyService(
	properties repository.PropertyRepository,
	users repository.UserRepository,
	cache SearchCacheStore,
	contact ContactNotifier,
	logger *slog.Logger,
	cacheTTL time.Duration,
) PropertyService {
	return &propertyService{
		properties: properties,
		users:      users,
		cache:      cache,
		contact:    contact,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

func validateListingInput(in ListingInput) (repository.PropertyContent, domain.Status, error) {
	var zero repository.PropertyContent
	title := strings.TrimSpace(in.Title)
	address := strings.TrimSpace(in.Address)
	if title == "" {
		return zero, "", newValidationError("title is required")
	}
	if address == "" {
		return zero, "", newValidationError("address is required")
	}
	if in.Price < 0 {
		return zero, "", newValidationError("price must not be negative")
	}
	if len(in.ImageURLs) > maxListingImages {
		return zero, "", newValidationError(fmt.Sprintf("at most %d images per listing", maxListingImages))
	}
	requested, err := domain.ParseStatus(in.Status)
	if err != nil {
		return zero, "", newValidationError(err.Error())
	}
	// Owners pick between draft and review; moderation states are not
	// reachable through the edit form.
	if requested == domain.StatusApproved || requested == domain.StatusRejected {
		return zero, "", newValidationError("listings cannot be self-moderated")
	}
	content := repository.PropertyContent{
		Title:       title,
		Description: in.Description,
		Price:       in.Price,
		Address:     address,
		ImageURLs:   domain.ImageURLList(in.ImageURLs),
	}
	return content, requested, nil
}

func (s *propertyService) Create(ctx context.Context, caller Caller, in ListingInput) (*domain.Property, error) {
	if !caller.Authenticated {
		return nil, ErrNotAuthenticated
	}
	content, requested, err := validateListingInput(in)
	if err != nil {
		return nil, err
	}
	property := &domain.Property{
		Title:       content.Title,
		Description: content.Description,
		Price:       content.Price,
		Address:     content.Address,
		ImageURLs:   content.ImageURLs,
		Status:      domain.InitialStatus(requested),
		OwnerID:     caller.ID,
	}
	if err := s.properties.Create(property); err != nil {
		observability.RecordListingEvent(ctx, "create", "error")
		return nil, err
	}
	s.flushSearchCache(ctx)
	observability.RecordListingEvent(ctx, "create", "success")
	return property, nil
}

func (s *propertyService) Update(ctx context.Context, caller Caller, id uint, in ListingInput) (*domain.Property, error) {
	property, err := s.properties.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if decision := AuthorizeListing(caller, ActionEditOrDelete, property.OwnerID); !decision.Allowed {
		observability.RecordListingEvent(ctx, "update", "denied")
		return nil, denialError(decision)
	}
	content, requested, err := validateListingInput(in)
	if err != nil {
		return nil, err
	}
	next := domain.NextStatusOnEdit(property.Status, requested)
	if err := s.properties.UpdateContent(id, content, next); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrListingNotFound
		}
		observability.RecordListingEvent(ctx, "update", "error")
		return nil, err
	}
	s.flushSearchCache(ctx)
	observability.RecordListingEvent(ctx, "update", "success")
	return s.properties.FindByID(id)
}

func (s *propertyService) Delete(ctx context.Context, caller Caller, id uint) error {
	property, err := s.properties.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if decision := AuthorizeListing(caller, ActionEditOrDelete, property.OwnerID); !decision.Allowed {
		observability.RecordListingEvent(ctx, "delete", "denied")
		return denialError(decision)
	}
	if err := s.properties.Delete(id); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrListingNotFound
		}
		observability.RecordListingEvent(ctx, "delete", "error")
		return err
	}
	s.flushSearchCache(ctx)
	observability.RecordListingEvent(ctx, "delete", "success")
	return nil
}

func (s *propertyService) Approve(ctx context.Context, caller Caller, id uint) (*domain.Property, error) {
	return s.moderate(ctx, caller, id, domain.StatusApproved)
}

func (s *propertyService) Reject(ctx context.Context, caller Caller, id uint) (*domain.Property, error) {
	return s.moderate(ctx, caller, id, domain.StatusRejected)
}

func (s *propertyService) moderate(ctx context.Context, caller Caller, id uint, verdict domain.Status) (*domain.Property, error) {
	op := strings.ToLower(string(verdict))
	if decision := AuthorizeListing(caller, ActionModerate, ""); !decision.Allowed {
		observability.RecordModerationEvent(ctx, op, "denied")
		return nil, denialError(decision)
	}
	if err := s.properties.UpdateStatus(id, verdict); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrListingNotFound
		}
		observability.RecordModerationEvent(ctx, op, "error")
		return nil, err
	}
	s.flushSearchCache(ctx)
	observability.RecordModerationEvent(ctx, op, "success")
	return s.properties.FindByID(id)
}

func (s *propertyService) GetVisible(ctx context.Context, caller Caller, id uint) (*domain.Property, error) {
	property, err := s.properties.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if property.Status == domain.StatusApproved {
		return property, nil
	}
	if caller.IsAdmin() || (caller.Authenticated && caller.ID == property.OwnerID) {
		return property, nil
	}
	// Hidden listings look exactly like missing ones.
	return nil, ErrListingNotFound
}

func (s *propertyService) SearchPublic(ctx context.Context, q PublicSearchQuery) (repository.PageResult[domain.Property], error) {
	key := fmt.Sprintf("q=%s|min=%d|max=%d|page=%d|size=%d",
		strings.ToLower(strings.TrimSpace(q.Query)), q.MinPrice, q.MaxPrice, q.Page, q.PageSize)

	if payload, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "search cache read failed", "error", err)
		observability.RecordSearchCacheEvent(ctx, "error")
	} else if ok {
		var cached repository.PageResult[domain.Property]
		if err := json.Unmarshal(payload, &cached); err == nil {
			observability.RecordSearchCacheEvent(ctx, "hit")
			return cached, nil
		}
	} else {
		observability.RecordSearchCacheEvent(ctx, "miss")
	}

	result, err := s.properties.ListPaged(repository.PropertyListQuery{
		PageRequest: repository.PageRequest{Page: q.Page, PageSize: q.PageSize},
		Status:      domain.StatusApproved,
		Query:       q.Query,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
	})
	if err != nil {
		return result, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "search cache write failed", "error", err)
		}
	}
	return result, nil
}

func (s *propertyService) ListOwn(_ context.Context, caller Caller) ([]domain.Property, error) {
	if !caller.Authenticated {
		return nil, ErrNotAuthenticated
	}
	return s.properties.ListByOwner(caller.ID)
}

func (s *propertyService) ListAll(_ context.Context, caller Caller, q AdminListQuery) (repository.PageResult[domain.Property], error) {
	var zero repository.PageResult[domain.Property]
	if decision := AuthorizeListing(caller, ActionModerate, ""); !decision.Allowed {
		return zero, denialError(decision)
	}
	status, err := domain.ParseStatus(q.Status)
	if err != nil {
		return zero, newValidationError(err.Error())
	}
	return s.properties.ListPaged(repository.PropertyListQuery{
		PageRequest: repository.PageRequest{Page: q.Page, PageSize: q.PageSize},
		Status:      status,
	})
}

func (s *propertyService) Contact(ctx context.Context, caller Caller, id uint, in ContactInput) error {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" {
		return newValidationError("name is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return newValidationError("a valid email address is required")
	}
	if message == "" {
		return newValidationError("message is required")
	}

	property, err := s.GetVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	owner, err := s.users.FindByID(property.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if err := s.contact.SendContactRequest(ctx, ContactRequest{
		ListingID:    property.ID,
		ListingTitle: property.Title,
		OwnerEmail:   owner.Email,
		SenderName:   name,
		SenderEmail:  strings.TrimSpace(in.Email),
		Message:      message,
	}); err != nil {
		observability.RecordContactEvent(ctx, "error")
		return err
	}
	observability.RecordContactEvent(ctx, "success")
	return nil
}

// flushSearchCache drops all cached public pages after any mutation. Cache
// failures degrade to fresh queries and are not surfaced to callers.
func (s *propertyService) flushSearchCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.WarnContext(ctx, "search cache invalidation failed", "error", err)
	}
}

// denialError maps an authorization decision onto a service error.
func denialError(d Decision) error {
	if d.Reason == DenialUnauthenticated {
		return ErrNotAuthenticated
	}
	return ErrNotAuthorized
}
