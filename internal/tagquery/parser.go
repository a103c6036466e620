package tagquery

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Default modifier names and symbols.
const (
	ModifierBoost = "boost"
	ModifierFuzzy = "fuzzy"

	SymbolBoost = "^"
	SymbolFuzzy = "~"
)

// DefaultLimit caps the number of accepted terms per query.
const DefaultLimit = 64

var (
	// ErrReservedModifier is returned when a modifier would shadow a
	// reserved output name.
	ErrReservedModifier = errors.New("reserved modifier name")

	// ErrDuplicateModifier is returned when a modifier name is registered
	// twice.
	ErrDuplicateModifier = errors.New("modifier already registered")

	// ErrInvalidModifier is returned for empty modifier names or symbols
	// and symbols that collide with query syntax.
	ErrInvalidModifier = errors.New("invalid modifier")
)

var reservedModifiers = map[string]bool{
	"include": true,
	"column":  true,
}

// SpecialParser converts the raw value of a special filter. A returned
// error makes the whole term a literal.
type SpecialParser func(raw string) (any, error)

type modifier struct {
	name   string
	symbol string
}

// Parser parses tag search expressions.
//
// Registration is expected at start-up; Parse is safe for concurrent use.
type Parser struct {
	mu        sync.RWMutex
	modifiers []modifier
	specials  map[string]SpecialParser

	limit     int
	noRepeat  bool
	shorthand bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLimit caps the number of accepted terms; 0 disables the cap.
func WithLimit(n int) Option {
	return func(p *Parser) {
		if n < 0 {
			n = 0
		}
		p.limit = n
	}
}

// WithNoRepeat drops repeated top-level terms.
func WithNoRepeat(enabled bool) Option {
	return func(p *Parser) {
		p.noRepeat = enabled
	}
}

// WithShorthand toggles rewriting a leading "-" into the negation marker.
func WithShorthand(enabled bool) Option {
	return func(p *Parser) {
		p.shorthand = enabled
	}
}

// NewParser returns a parser with the boost and fuzzy modifiers
// registered and no specials.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		specials:  make(map[string]SpecialParser),
		limit:     DefaultLimit,
		shorthand: true,
	}
	p.modifiers = []modifier{
		{name: ModifierBoost, symbol: SymbolBoost},
		{name: ModifierFuzzy, symbol: SymbolFuzzy},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterModifier adds a weighted modifier. Terms containing symbol are
// split into a base term and a numeric weight listed under name.
func (p *Parser) RegisterModifier(name, symbol string) error {
	if reservedModifiers[strings.ToLower(name)] {
		return fmt.Errorf("%w: %q", ErrReservedModifier, name)
	}
	if name == "" || symbol == "" || strings.ContainsAny(symbol, " \t\n\r()\"':!") {
		return fmt.Errorf("%w: name %q symbol %q", ErrInvalidModifier, name, symbol)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, m := range p.modifiers {
		if m.name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateModifier, name)
		}
	}
	p.modifiers = append(p.modifiers, modifier{name: name, symbol: symbol})
	return nil
}

// UnregisterModifier removes a modifier. It reports whether one was removed.
func (p *Parser) UnregisterModifier(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, m := range p.modifiers {
		if m.name == name {
			p.modifiers = append(p.modifiers[:i], p.modifiers[i+1:]...)
			return true
		}
	}
	return false
}

// RegisterSpecial adds a key:value special filter. A nil parser keeps the
// raw string value. Registering an existing key replaces its parser.
func (p *Parser) RegisterSpecial(key string, parse SpecialParser) error {
	if key == "" || strings.ContainsAny(key, " \t\n\r():!\"'") {
		return fmt.Errorf("invalid special key %q", key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.specials[key] = parse
	return nil
}

// UnregisterSpecial removes a special key. It reports whether one was removed.
func (p *Parser) UnregisterSpecial(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.specials[key]
	delete(p.specials, key)
	return ok
}

// Parse parses a search expression. It never fails.
func (p *Parser) Parse(input string) Query {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := &scanner{
		limit:     p.limit,
		noRepeat:  p.noRepeat,
		shorthand: p.shorthand,
		seen:      make(map[string]bool),
	}
	chunks := s.scan(norm.NFC.String(input))

	return p.extract(chunks)
}
