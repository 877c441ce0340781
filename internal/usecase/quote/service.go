package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guardquote/internal/config"
	"guardquote/internal/domain/quote"
	"guardquote/internal/domain/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Owners resolves the authenticated identity to a stored user.
type Owners interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// ListCache stores per-owner quote lists. Keys embed a per-owner version that
// is bumped after every write, so entries are never invalidated in place.
type ListCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetInt(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

type Options struct {
	Policy       config.AccessPolicy
	ListCacheTTL time.Duration
}

type Service struct {
	quotes quote.Repository
	owners Owners
	cache  ListCache
	logger *zap.Logger

	policy config.AccessPolicy
	ttl    time.Duration
}

func NewService(quotes quote.Repository, owners Owners, cache ListCache, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Policy == "" {
		opts.Policy = config.PolicyForbidden
	}
	return &Service{
		quotes: quotes,
		owners: owners,
		cache:  cache,
		logger: logger,
		policy: opts.Policy,
		ttl:    opts.ListCacheTTL,
	}
}

// Create stores a new pending quote owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req quote.CreateRequest) (quote.Quote, error) {
	if ownerID == uuid.Nil {
		return quote.Quote{}, quote.ErrUnauthorized
	}
	if _, err := s.owners.GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return quote.Quote{}, quote.ErrUnauthorized
		}
		return quote.Quote{}, quote.Unavailable("resolve owner", err)
	}

	d, err := quote.ValidateCreate(req)
	if err != nil {
		return quote.Quote{}, err
	}

	id, err := s.quotes.Insert(ctx, quote.Quote{
		ID:          uuid.New(),
		UserID:      ownerID,
		Type:        d.Type,
		Status:      quote.StatusPending,
		Description: d.Description,
		Individual:  d.Individual,
		Business:    d.Business,
	})
	if err != nil {
		return quote.Quote{}, quote.Unavailable("insert quote", err)
	}
	s.bumpOwner(ctx, ownerID)

	created, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return quote.Quote{}, quote.Unavailable("load created quote", err)
	}
	s.logger.Info("quote created",
		zap.String("quote_id", id.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("quote_type", string(created.Type)),
	)
	return created, nil
}

func (s *Service) Get(ctx context.Context, requesterID, id uuid.UUID) (quote.Quote, error) {
	return s.loadOwned(ctx, requesterID, id)
}

func (s *Service) ListMine(ctx context.Context, requesterID uuid.UUID, order quote.ListOrder) ([]quote.Quote, error) {
	if requesterID == uuid.Nil {
		return nil, quote.ErrUnauthorized
	}
	if order != quote.OrderDesc {
		order = quote.OrderAsc
	}

	key, cacheable := s.listKey(ctx, requesterID, order)
	if cacheable {
		var cached []quote.Quote
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("quote list cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	items, err := s.quotes.ListByOwner(ctx, requesterID, order)
	if err != nil {
		return nil, quote.Unavailable("list quotes", err)
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, key, items, s.ttl); err != nil {
			s.logger.Warn("quote list cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

// Update validates req against the stored record and writes it guarded by the
// status that validation saw. A concurrent status change makes the write miss:
// a status change is then reported as an invalid transition from the new
// status, a field edit is re-validated against it.
func (s *Service) Update(ctx context.Context, requesterID, id uuid.UUID, req quote.UpdateRequest) (quote.Quote, error) {
	current, err := s.loadOwned(ctx, requesterID, id)
	if err != nil {
		return quote.Quote{}, err
	}

	p, err := quote.ValidateUpdate(current, req)
	if err != nil {
		return quote.Quote{}, err
	}
	if p.Empty() {
		return current, nil
	}

	expected := current.Status
	n, err := s.quotes.UpdateByID(ctx, id, p, &expected)
	if err != nil {
		return quote.Quote{}, quote.Unavailable("update quote", err)
	}
	if n == 0 {
		return quote.Quote{}, s.missedWrite(ctx, id, req, p, expected)
	}
	s.bumpOwner(ctx, current.UserID)

	updated, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return quote.Quote{}, quote.ErrNotFound
		}
		return quote.Quote{}, quote.Unavailable("load updated quote", err)
	}
	if p.Status != nil {
		s.logger.Info("quote status changed",
			zap.String("quote_id", id.String()),
			zap.String("from", string(expected)),
			zap.String("to", string(*p.Status)),
		)
	}
	return updated, nil
}

// Delete removes an owned quote and returns the affected count. Deleting a
// missing id is not an error. Under the not_found policy a foreign quote is
// reported the same way as a missing one.
func (s *Service) Delete(ctx context.Context, requesterID, id uuid.UUID) (int64, error) {
	if requesterID == uuid.Nil {
		return 0, quote.ErrUnauthorized
	}

	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return 0, nil
		}
		return 0, quote.Unavailable("load quote", err)
	}
	if q.UserID != requesterID {
		if s.policy == config.PolicyNotFound {
			return 0, nil
		}
		return 0, quote.ErrForbidden
	}

	n, err := s.quotes.DeleteByID(ctx, id)
	if err != nil {
		return 0, quote.Unavailable("delete quote", err)
	}
	if n > 0 {
		s.bumpOwner(ctx, q.UserID)
	}
	return n, nil
}

const expireAttempts = 3

// Expire moves a quote to expired on behalf of the system. Expiring an expired
// quote returns it unchanged.
func (s *Service) Expire(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	var last quote.Status
	for attempt := 0; attempt < expireAttempts; attempt++ {
		q, err := s.quotes.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, quote.ErrNotFound) {
				return quote.Quote{}, quote.ErrNotFound
			}
			return quote.Quote{}, quote.Unavailable("load quote", err)
		}
		if q.Status == quote.StatusExpired {
			return q, nil
		}
		if err := quote.CheckTransition(q.Status, quote.StatusExpired); err != nil {
			return quote.Quote{}, err
		}

		to := quote.StatusExpired
		n, err := s.quotes.UpdateByID(ctx, id, quote.Patch{Status: &to, SetEstimatedAmount: true}, &q.Status)
		if err != nil {
			return quote.Quote{}, quote.Unavailable("expire quote", err)
		}
		last = q.Status
		if n == 0 {
			continue
		}

		s.bumpOwner(ctx, q.UserID)
		q.Status = quote.StatusExpired
		q.EstimatedAmount.Valid = false
		if fresh, err := s.quotes.GetByID(ctx, id); err == nil {
			q = fresh
		}
		return q, nil
	}
	return quote.Quote{}, &quote.TransitionError{From: last, To: quote.StatusExpired}
}

type ExpireResult struct {
	Scanned int
	Expired int
	Skipped int
}

// ExpireStale expires up to limit open quotes not updated since cutoff. Quotes
// that change underneath it are skipped; a storage failure stops the sweep and
// returns what was done so far.
func (s *Service) ExpireStale(ctx context.Context, cutoff time.Time, limit int) (ExpireResult, error) {
	var res ExpireResult

	ids, err := s.quotes.ListExpirable(ctx, cutoff, limit)
	if err != nil {
		return res, quote.Unavailable("list expirable quotes", err)
	}
	res.Scanned = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := s.Expire(ctx, id)
		switch {
		case err == nil:
			res.Expired++
		case errors.Is(err, quote.ErrNotFound), errors.Is(err, quote.ErrInvalidTransition):
			res.Skipped++
			s.logger.Debug("quote skipped during expiry", zap.String("quote_id", id.String()), zap.Error(err))
		default:
			return res, err
		}
	}

	s.logger.Info("stale quotes expired",
		zap.Time("cutoff", cutoff),
		zap.Int("scanned", res.Scanned),
		zap.Int("expired", res.Expired),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// InvalidateOwner drops every cached list for ownerID.
func (s *Service) InvalidateOwner(ctx context.Context, ownerID uuid.UUID) {
	s.bumpOwner(ctx, ownerID)
}

func (s *Service) loadOwned(ctx context.Context, requesterID, id uuid.UUID) (quote.Quote, error) {
	if requesterID == uuid.Nil {
		return quote.Quote{}, quote.ErrUnauthorized
	}
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return quote.Quote{}, quote.ErrNotFound
		}
		return quote.Quote{}, quote.Unavailable("load quote", err)
	}
	if q.UserID != requesterID {
		return quote.Quote{}, s.denied()
	}
	return q, nil
}

func (s *Service) denied() error {
	if s.policy == config.PolicyNotFound {
		return quote.ErrNotFound
	}
	return quote.ErrForbidden
}

// missedWrite explains a conditional update that touched no rows.
func (s *Service) missedWrite(ctx context.Context, id uuid.UUID, req quote.UpdateRequest, p quote.Patch, expected quote.Status) error {
	latest, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			return quote.ErrNotFound
		}
		return quote.Unavailable("reload quote", err)
	}
	s.logger.Info("quote update lost a status race",
		zap.String("quote_id", id.String()),
		zap.String("expected", string(expected)),
		zap.String("actual", string(latest.Status)),
	)
	if p.Status != nil {
		return &quote.TransitionError{From: latest.Status, To: *p.Status}
	}
	if _, err := quote.ValidateUpdate(latest, req); err != nil {
		return err
	}
	return &quote.ValidationError{Errors: quote.FieldErrors{
		"status": {"quote changed to " + string(latest.Status) + " during the update"},
	}}
}

func ownerVersionKey(ownerID uuid.UUID) string {
	return "quotes:owner:" + ownerID.String() + ":ver"
}

func (s *Service) listKey(ctx context.Context, ownerID uuid.UUID, order quote.ListOrder) (string, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return "", false
	}
	ver, err := s.cache.GetInt(ctx, ownerVersionKey(ownerID))
	if err != nil {
		s.logger.Warn("quote list cache version read failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("quotes:owner:%s:v%d:%s", ownerID, ver, order), true
}

func (s *Service) bumpOwner(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, ownerVersionKey(ownerID)); err != nil {
		s.logger.Warn("quote list cache version bump failed", zap.String("owner_id", ownerID.String()), zap.Error(err))
	}
}
