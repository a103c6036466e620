package tagquery

import (
	"math"
	"strconv"
	"strings"
)

// extract pulls specials and weighted modifiers out of the scanned chunks.
//
// Specials are only recognized as top-level bare terms; inside an OR-group
// a key:value term stays literal. Modifier suffixes are stripped from every
// term and the base term stays in the include list. With no-repeat a
// top-level term whose base term is already included is dropped, but its
// modifiers are still recorded.
func (p *Parser) extract(chunks []Chunk) Query {
	q := Query{
		Include:   make([]Chunk, 0, len(chunks)),
		Specials:  []Special{},
		Modifiers: make(map[string][]Weighted, len(p.modifiers)),
	}
	for _, m := range p.modifiers {
		q.Modifiers[m.name] = []Weighted{}
	}
	seen := make(map[string]map[string]bool, len(p.modifiers))
	included := make(map[string]bool)

	record := func(name string, w Weighted) {
		if seen[name] == nil {
			seen[name] = make(map[string]bool)
		}
		if seen[name][w.Term] {
			return
		}
		seen[name][w.Term] = true
		q.Modifiers[name] = append(q.Modifiers[name], w)
	}

	for _, chunk := range chunks {
		if !chunk.IsGroup() {
			if special, ok := p.special(chunk[0]); ok {
				q.Specials = append(q.Specials, special)
				continue
			}
		}

		out := make(Chunk, len(chunk))
		for i, term := range chunk {
			out[i] = p.stripModifiers(term, record)
		}
		if p.noRepeat && !out.IsGroup() {
			if included[out[0]] {
				continue
			}
			included[out[0]] = true
		}
		q.Include = append(q.Include, out)
	}

	return q
}

// special parses term as key:value against the registered specials.
func (p *Parser) special(term string) (Special, bool) {
	body, negated := splitNegation(term)

	idx := strings.Index(body, ":")
	if idx <= 0 {
		return Special{}, false
	}
	key, raw := body[:idx], body[idx+1:]
	if raw == "" {
		return Special{}, false
	}

	parse, ok := p.specials[key]
	if !ok {
		return Special{}, false
	}

	var value any = raw
	if parse != nil {
		v, err := parse(raw)
		if err != nil {
			return Special{}, false
		}
		value = v
	}
	return Special{Key: key, Value: value, Negated: negated}, true
}

// stripModifiers removes modifier suffixes from term, rightmost first,
// and records each one against the final base term. Each modifier is
// applied at most once per term.
func (p *Parser) stripModifiers(term string, record func(string, Weighted)) string {
	body, negated := splitNegation(term)

	type hit struct {
		name   string
		suffix string
	}
	var hits []hit
	used := make([]bool, len(p.modifiers))

	for {
		best, bestIdx := -1, 0
		for i, m := range p.modifiers {
			if used[i] {
				continue
			}
			idx := strings.LastIndex(body, m.symbol)
			if idx > bestIdx {
				best, bestIdx = i, idx
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		m := p.modifiers[best]
		hits = append(hits, hit{name: m.name, suffix: body[bestIdx+len(m.symbol):]})
		body = body[:bestIdx]
	}

	for _, h := range hits {
		record(h.name, Weighted{Term: body, Weight: parseWeight(h.suffix)})
	}

	if negated {
		return Negation + body
	}
	return body
}

// parseWeight parses a modifier suffix; anything that is not a finite
// number weighs 1.
func parseWeight(s string) float64 {
	if s == "" {
		return 1
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}
