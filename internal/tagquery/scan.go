package tagquery

import (
	"strings"
	"unicode"
)

// scanner is a single-pass character state machine over one input.
type scanner struct {
	limit     int
	noRepeat  bool
	shorthand bool

	chunks   []Chunk
	seen     map[string]bool
	accepted int

	buf       strings.Builder
	quote     rune // open quote character, 0 outside quotes
	quoted    bool // the current token contained a quoted span
	leadQuote bool // the current token started inside quotes

	depth int // open parentheses; nested groups flatten into one
	group []string
}

func (s *scanner) scan(input string) []Chunk {
	for _, r := range input {
		if s.quote != 0 {
			if r == s.quote {
				s.quote = 0
			} else {
				s.buf.WriteRune(r)
			}
			continue
		}

		switch {
		case (r == '"' || r == '\'') && s.atTokenStart():
			s.quote = r
			s.quoted = true
			if s.buf.Len() == 0 {
				s.leadQuote = true
			}
		case r == '(':
			s.flush()
			s.depth++
		case r == ')':
			s.flush()
			if s.depth > 0 {
				s.depth--
				if s.depth == 0 {
					s.closeGroup()
				}
			}
		case unicode.IsSpace(r):
			s.flush()
		default:
			s.buf.WriteRune(r)
		}
	}

	// Unterminated quotes and groups close at end of input.
	s.flush()
	if s.depth > 0 {
		s.depth = 0
		s.closeGroup()
	}

	if s.chunks == nil {
		return []Chunk{}
	}
	return s.chunks
}

// atTokenStart reports whether a quote here opens a quoted span: at the
// start of a token or right after a negation prefix. Elsewhere quotes are
// literal, as in rarity's.
func (s *scanner) atTokenStart() bool {
	switch s.buf.String() {
	case "", Negation, "-":
		return true
	}
	return false
}

func (s *scanner) flush() {
	term := s.buf.String()
	quoted, leadQuote := s.quoted, s.leadQuote
	s.buf.Reset()
	s.quoted, s.leadQuote = false, false

	if term == "" {
		return
	}
	if !quoted && isKeyword(term) {
		return
	}
	if s.shorthand && !leadQuote {
		term = RewriteShorthand(term)
	}
	if base, _ := splitNegation(term); base == "" || base == "-" {
		return
	}
	if s.limit > 0 && s.accepted >= s.limit {
		return
	}

	if s.depth > 0 {
		s.group = append(s.group, term)
		s.accepted++
		return
	}
	if s.addTopLevel(term) {
		s.accepted++
	}
}

// addTopLevel appends a bare term chunk unless no-repeat drops it.
func (s *scanner) addTopLevel(term string) bool {
	if s.noRepeat {
		if s.seen[term] {
			return false
		}
		s.seen[term] = true
	}
	s.chunks = append(s.chunks, Term(term))
	return true
}

// closeGroup emits the accumulated group. A single member collapses to a
// bare term, which is then subject to no-repeat like any top-level term.
func (s *scanner) closeGroup() {
	group := s.group
	s.group = nil

	switch len(group) {
	case 0:
	case 1:
		if !s.addTopLevel(group[0]) {
			s.accepted--
		}
	default:
		s.chunks = append(s.chunks, AnyOf(group...))
	}
}

func isKeyword(term string) bool {
	return strings.EqualFold(term, "AND") || strings.EqualFold(term, "OR")
}

// RewriteShorthand turns a leading "-" into the negation marker, so
// "-rarity" reads as "!rarity". Other terms are returned unchanged.
func RewriteShorthand(term string) string {
	if len(term) > 1 && term[0] == '-' {
		return Negation + term[1:]
	}
	return term
}
