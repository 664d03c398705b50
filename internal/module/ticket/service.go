package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/deskgate/server/internal/infra/events"
	"github.com/deskgate/server/internal/module/session"
	apperrors "github.com/deskgate/server/internal/shared/errors"
)

// Remote is the upstream helpdesk contract this service consumes.
// Implementations return normalized domain models and map non-2xx
// replies onto the shared error taxonomy.
type Remote interface {
	FetchTicket(ctx context.Context, userID string, ticketID int64) (*Ticket, error)
	FetchTickets(ctx context.Context, query ListQuery) ([]Ticket, error)
	CreateTicket(ctx context.Context, userID string, input CreateTicketInput) (*Ticket, error)
	AddReply(ctx context.Context, userID string, ticketID int64, input ReplyInput) (*Ticket, error)
	CloseTicket(ctx context.Context, userID string, ticketID int64) (*Ticket, error)
	FetchRequestTypes(ctx context.Context) ([]RequestType, error)
}

// Cache is the tiered store surface the service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string)
	InvalidatePattern(ctx context.Context, pattern string) int
}

// ServiceConfig holds the TTL inputs the service needs.
type ServiceConfig struct {
	Rules           TTLRules
	RequestTypesTTL time.Duration
}

// Service is the ticket data-access façade: the only component that
// builds ticket cache keys, calls the upstream, and applies the TTL
// policy. Reads are cache-first; mutations bypass the cache and sweep
// the affected keys afterwards.
type Service struct {
	cache  Cache
	remote Remote
	config ServiceConfig
	bus    *events.Bus
	logger *zap.Logger

	// group collapses concurrent misses for the same cache key into a
	// single upstream fetch.
	group singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new ticket service.
func NewService(cache Cache, remote Remote, cfg ServiceConfig, bus *events.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:  cache,
		remote: remote,
		config: cfg,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns a single ticket, serving from cache when fresh.
func (s *Service) Get(ctx context.Context, identity session.Identity, ticketID int64) (*Ticket, error) {
	if ticketID <= 0 {
		return nil, ErrInvalidTicketID
	}

	key := DetailKey(ticketID)

	var cached Ticket
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		t, err := s.remote.FetchTicket(ctx, identity.UserID, ticketID)
		if err != nil {
			return nil, wrapTicketError(err, ticketID)
		}

		decision := s.config.Rules.DetailTTL(t.Year, s.currentYear(), t.Closed())
		s.store(ctx, key, t, decision)
		return t, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Ticket), nil
}

// List returns the user's tickets matching the filter, ordered as
// requested. The cache holds the unsorted collection; ordering is
// applied to a fresh copy on every return path, so a cache hit with a
// different sort order never refetches.
func (s *Service) List(ctx context.Context, identity session.Identity, filter ListFilter, order SortOrder) ([]Ticket, error) {
	if filter.Category == "" {
		filter.Category = CategoryActive
	}
	if !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, filter.Category)
	}
	if filter.Year == 0 {
		filter.Year = s.currentYear()
	}

	key := ListKey(filter.Category, filter.Year, identity.UserID)

	var cached []Ticket
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return Sort(cached, order), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		tickets, err := s.remote.FetchTickets(ctx, ListQuery{
			UserID:   identity.UserID,
			Category: filter.Category,
			Year:     filter.Year,
		})
		if err != nil {
			return nil, err
		}
		if tickets == nil {
			tickets = []Ticket{}
		}

		decision := s.config.Rules.ListTTL(filter.Year, s.currentYear(), filter.Category)
		s.store(ctx, key, tickets, decision)
		return tickets, nil
	})
	if err != nil {
		return nil, err
	}

	return Sort(v.([]Ticket), order), nil
}

// Create submits a new ticket. The cache plays no part in the write;
// on success every cached list of this user is swept, because a new
// ticket can appear in several list views at once. The created ticket
// is not cached here, the next read repopulates.
func (s *Service) Create(ctx context.Context, identity session.Identity, input CreateTicketInput) (*Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.remote.CreateTicket(ctx, identity.UserID, input)
	if err != nil {
		return nil, err
	}

	s.sweepLists(ctx, identity.UserID)
	s.publish(events.NewTicketCreatedEvent(created.ID, identity.UserID, created.Subject, created.RequestTypeID))

	return created, nil
}

// AddReply appends a reply to a ticket, then invalidates the ticket's
// detail entry and every cached list of this user.
func (s *Service) AddReply(ctx context.Context, identity session.Identity, ticketID int64, input ReplyInput) (*Ticket, error) {
	if ticketID <= 0 {
		return nil, ErrInvalidTicketID
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.remote.AddReply(ctx, identity.UserID, ticketID, input)
	if err != nil {
		return nil, wrapTicketError(err, ticketID)
	}

	s.cache.Invalidate(ctx, DetailKey(ticketID))
	s.sweepLists(ctx, identity.UserID)
	s.publish(events.NewTicketUpdatedEvent(ticketID, identity.UserID))

	return updated, nil
}

// Close closes a ticket with the same invalidation scope as AddReply.
func (s *Service) Close(ctx context.Context, identity session.Identity, ticketID int64) (*Ticket, error) {
	if ticketID <= 0 {
		return nil, ErrInvalidTicketID
	}

	closed, err := s.remote.CloseTicket(ctx, identity.UserID, ticketID)
	if err != nil {
		return nil, wrapTicketError(err, ticketID)
	}

	s.cache.Invalidate(ctx, DetailKey(ticketID))
	s.sweepLists(ctx, identity.UserID)
	s.publish(events.NewTicketClosedEvent(ticketID, identity.UserID))

	return closed, nil
}

// RequestTypes returns the upstream's request type catalog.
func (s *Service) RequestTypes(ctx context.Context) ([]RequestType, error) {
	key := RequestTypesKey()

	var cached []RequestType
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		types, err := s.remote.FetchRequestTypes(ctx)
		if err != nil {
			return nil, err
		}

		s.store(ctx, key, types, Decision{
			TTL:         s.config.RequestTypesTTL,
			Description: "request type catalog",
			Reason:      "static upstream configuration",
		})
		return types, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]RequestType), nil
}

// store caches a fetched value under the decision's TTL. A cache write
// failure downgrades the call to uncached, it never fails the fetch.
func (s *Service) store(ctx context.Context, key string, value any, decision Decision) {
	if err := s.cache.Set(ctx, key, value, decision.TTL); err != nil {
		s.logger.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("cached "+decision.Description,
		zap.String("key", key),
		zap.Duration("ttl", decision.TTL),
		zap.String("reason", decision.Reason),
	)
}

// sweepLists drops every cached list view of one user.
func (s *Service) sweepLists(ctx context.Context, userID string) {
	removed := s.cache.InvalidatePattern(ctx, ListPatternForUser(userID))
	s.logger.Debug("swept ticket list caches",
		zap.String("user_id", userID),
		zap.Int("removed", removed),
	)
}

func (s *Service) publish(event events.Event) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *Service) currentYear() int {
	return s.now().Year()
}

// wrapTicketError translates upstream taxonomy errors into the
// module's ticket-specific variants.
func wrapTicketError(err error, ticketID int64) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("%w: id %d", ErrTicketNotFound, ticketID)
	case errors.Is(err, apperrors.ErrForbidden):
		return fmt.Errorf("%w: id %d", ErrTicketForbidden, ticketID)
	default:
		return err
	}
}
