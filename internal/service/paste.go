package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pasteapi/internal/config"
	"pasteapi/internal/ident"
	"pasteapi/internal/metrics"
	"pasteapi/internal/model"
	"pasteapi/internal/repository"
)

var (
	ErrIDRequired  = errors.New("id is required")
	ErrNotFound    = errors.New("paste not found")
	ErrExpired     = errors.New("paste has expired")
	ErrIDExhausted = errors.New("no free paste identifier")
	ErrTooLarge    = errors.New("paste exceeds maximum size")
)

// CreateInput carries the caller-supplied fields of a new paste. Empty
// strings fall back to the configured defaults.
type CreateInput struct {
	Raw   string
	Lexer string
	// Expiry overrides the configured lifetime when set. model.NoExpiry
	// stores the paste without an expiration date.
	Expiry *time.Duration
	Src    string
}

// PasteService defines the use cases for handling pastes.
type PasteService interface {
	// Create highlights and stores a new paste. Identifier collisions are
	// retried with freshly drawn identifiers.
	Create(ctx context.Context, in CreateInput) (*model.Paste, error)

	// Get returns a live paste by its public identifier. The result is the
	// caller's own copy.
	Get(ctx context.Context, pasteID string) (*model.Paste, error)

	// ResolveRemoval returns the paste that removalID would delete, without
	// deleting it. Expired pastes are still returned since they can be removed.
	ResolveRemoval(ctx context.Context, removalID string) (*model.Paste, error)

	// Remove deletes the paste owning removalID and returns its paste_id.
	Remove(ctx context.Context, removalID string) (string, error)

	// PurgeExpired deletes every paste past its expiration date and
	// returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)
}

type pasteService struct {
	repo        repository.PasteRepository
	highlighter model.Highlighter
	cfg         config.PasteConfig
	metrics     *metrics.PasteMetrics
	cache       *lru.Cache[string, *model.Paste]
	tracer      trace.Tracer
	now         func() time.Time
	newID       model.IDGenerator
}

// NewPasteService constructs a PasteService. A non-positive cfg.CacheSize
// disables the read cache. m may be nil.
func NewPasteService(repo repository.PasteRepository, h model.Highlighter, cfg config.PasteConfig, m *metrics.PasteMetrics) (PasteService, error) {
	if repo == nil {
		return nil, errors.New("paste repository is nil")
	}
	if h == nil {
		return nil, errors.New("highlighter is nil")
	}
	if cfg.IDRetries < 0 {
		cfg.IDRetries = 0
	}

	s := &pasteService{
		repo:        repo,
		highlighter: h,
		cfg:         cfg,
		metrics:     m,
		tracer:      otel.Tracer("pasteapi/internal/service"),
		now:         time.Now,
		newID:       ident.New,
	}
	if cfg.CacheSize > 0 {
		c, err := lru.New[string, *model.Paste](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create paste cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

func (s *pasteService) Create(ctx context.Context, in CreateInput) (*model.Paste, error) {
	ctx, span := s.tracer.Start(ctx, "PasteService.Create")
	defer span.End()

	if s.cfg.MaxSize > 0 && len(in.Raw) > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(in.Raw), s.cfg.MaxSize)
	}

	lexer := in.Lexer
	if lexer == "" {
		lexer = s.cfg.DefaultLexer
	}
	src := in.Src
	if src == "" {
		src = s.cfg.DefaultSource
	}
	expiry := s.cfg.DefaultExpiry
	if in.Expiry != nil {
		expiry = *in.Expiry
	}
	span.SetAttributes(
		attribute.String("paste.lexer", lexer),
		attribute.Int("paste.size", len(in.Raw)),
	)

	p, err := model.NewPaste(s.highlighter, in.Raw,
		model.WithLexer(lexer),
		model.WithSource(src),
		model.WithExpiry(expiry),
		model.WithClock(s.now),
		model.WithIDGenerator(s.newID),
	)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		stored, err := s.repo.Create(ctx, p)
		if err == nil {
			s.metrics.Created()
			span.SetAttributes(attribute.Int("paste.attempts", attempt+1))
			return stored, nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "insert failed")
			return nil, fmt.Errorf("store paste: %w", err)
		}

		s.metrics.Collision()
		if attempt >= s.cfg.IDRetries {
			span.SetStatus(codes.Error, "identifiers exhausted")
			return nil, fmt.Errorf("%w after %d attempts", ErrIDExhausted, attempt+1)
		}
		if err := p.AssignIDs(s.newID); err != nil {
			return nil, err
		}
	}
}

func (s *pasteService) Get(ctx context.Context, pasteID string) (*model.Paste, error) {
	if pasteID == "" {
		return nil, ErrIDRequired
	}
	now := s.now()

	if s.cache != nil {
		if p, ok := s.cache.Get(pasteID); ok {
			if p.Expired(now) {
				s.cache.Remove(pasteID)
				return nil, ErrExpired
			}
			return clonePaste(p), nil
		}
	}

	p, err := s.repo.FindByPasteID(ctx, pasteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Expired(now) {
		return nil, ErrExpired
	}
	if s.cache != nil {
		s.cache.Add(pasteID, p)
		return clonePaste(p), nil
	}
	return p, nil
}

// clonePaste copies p so callers cannot mutate a cached entry.
func clonePaste(p *model.Paste) *model.Paste {
	cp := *p
	if p.ExpDate != nil {
		exp := *p.ExpDate
		cp.ExpDate = &exp
	}
	return &cp
}

func (s *pasteService) ResolveRemoval(ctx context.Context, removalID string) (*model.Paste, error) {
	if removalID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByRemovalID(ctx, removalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *pasteService) Remove(ctx context.Context, removalID string) (string, error) {
	if removalID == "" {
		return "", ErrIDRequired
	}
	pasteID, err := s.repo.DeleteByRemovalID(ctx, removalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	s.evict(pasteID)
	s.metrics.Removed()
	return pasteID, nil
}

func (s *pasteService) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.evict(ids...)
	s.metrics.Expired(len(ids))
	return len(ids), nil
}

func (s *pasteService) evict(pasteIDs ...string) {
	if s.cache == nil {
		return
	}
	for _, id := range pasteIDs {
		s.cache.Remove(id)
	}
}
