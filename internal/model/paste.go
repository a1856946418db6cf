package model

import (
	"errors"
	"fmt"
	"time"

	"pasteapi/internal/ident"
)

const (
	// DefaultLexer selects plain-text rendering.
	DefaultLexer = "text"
	// DefaultSource marks pastes submitted through the web frontend.
	DefaultSource = "web"
	// DefaultExpiry is applied when no expiry option is given.
	DefaultExpiry = 7 * 24 * time.Hour
	// NoExpiry marks a paste that never expires.
	NoExpiry time.Duration = 0
)

var (
	ErrRawRequired   = errors.New("raw content is required")
	ErrInvalidExpiry = errors.New("expiry must not be negative")
	ErrLexerNotFound = errors.New("lexer not found")
)

// Highlighter renders source text as markup using the named lexer.
// Implementations must fail with an error wrapping ErrLexerNotFound when the
// lexer is unknown.
type Highlighter interface {
	Highlight(source, lexer string) (string, error)
}

// IDGenerator produces one public identifier per call.
type IDGenerator func() (string, error)

// Paste is a single stored paste: the submitted text, its rendered form and
// its lifecycle metadata. Fmt is derived from Raw and Lexer once, at
// construction, and is never recomputed.
type Paste struct {
	ID        int64      `json:"-"`
	PasteID   string     `json:"paste_id"`
	RemovalID string     `json:"-"`
	Lexer     string     `json:"lexer"`
	Raw       string     `json:"raw"`
	Fmt       string     `json:"fmt"`
	Src       string     `json:"src"`
	PubDate   time.Time  `json:"pub_date"`
	ChgDate   time.Time  `json:"chg_date"`
	ExpDate   *time.Time `json:"exp_date"`
}

type options struct {
	lexer  string
	expiry time.Duration
	src    string
	now    func() time.Time
	newID  IDGenerator
}

// Option customizes NewPaste.
type Option func(*options)

// WithLexer sets the lexer used for highlighting. An empty name keeps DefaultLexer.
func WithLexer(name string) Option {
	return func(o *options) {
		if name != "" {
			o.lexer = name
		}
	}
}

// WithExpiry sets the time-to-live. NoExpiry leaves ExpDate nil.
func WithExpiry(d time.Duration) Option {
	return func(o *options) { o.expiry = d }
}

// WithSource sets the provenance tag. An empty value keeps DefaultSource.
func WithSource(src string) Option {
	return func(o *options) {
		if src != "" {
			o.src = src
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how paste and removal identifiers are drawn.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) { o.newID = gen }
}

// NewPaste builds a fully populated paste or returns an error; it never
// returns a partially initialized record. Identifiers are not checked against
// storage, so two pastes may legitimately receive the same PasteID.
func NewPaste(h Highlighter, raw string, opts ...Option) (*Paste, error) {
	o := options{
		lexer:  DefaultLexer,
		expiry: DefaultExpiry,
		src:    DefaultSource,
		now:    time.Now,
		newID:  ident.New,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if raw == "" {
		return nil, ErrRawRequired
	}
	if o.expiry < 0 {
		return nil, ErrInvalidExpiry
	}
	if h == nil {
		return nil, errors.New("highlighter is nil")
	}

	now := o.now().UTC()
	p := &Paste{
		PubDate: now,
		ChgDate: now,
		Raw:     raw,
		Src:     o.src,
		Lexer:   o.lexer,
	}

	if err := p.AssignIDs(o.newID); err != nil {
		return nil, err
	}

	fmtd, err := h.Highlight(p.Raw, p.Lexer)
	if err != nil {
		return nil, fmt.Errorf("highlight: %w", err)
	}
	p.Fmt = fmtd

	if o.expiry != NoExpiry {
		exp := p.PubDate.Add(o.expiry)
		p.ExpDate = &exp
	}

	return p, nil
}

const maxRemovalDraws = 8

// AssignIDs draws a fresh PasteID and RemovalID. The removal identifier is
// redrawn if it happens to equal the paste identifier.
func (p *Paste) AssignIDs(gen IDGenerator) error {
	if gen == nil {
		return errors.New("id generator is nil")
	}
	pasteID, err := gen()
	if err != nil {
		return fmt.Errorf("generate paste id: %w", err)
	}
	for i := 0; i < maxRemovalDraws; i++ {
		removalID, err := gen()
		if err != nil {
			return fmt.Errorf("generate removal id: %w", err)
		}
		if removalID != pasteID {
			p.PasteID = pasteID
			p.RemovalID = removalID
			return nil
		}
	}
	return errors.New("generate removal id: no draw differed from paste id")
}

// Expired reports whether the paste is past its expiry at now.
// Pastes without an expiry date never expire.
func (p *Paste) Expired(now time.Time) bool {
	return p.ExpDate != nil && !now.Before(*p.ExpDate)
}

func (p *Paste) String() string {
	return fmt.Sprintf("<Paste(paste_id=%s)>", p.PasteID)
}
