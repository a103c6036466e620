package tagquery

import (
	"encoding/json"
	"strings"
)

// Negation is the leading marker of a negated term.
const Negation = "!"

// Chunk is one AND-ed element of a query: a bare term when it has one
// member, an OR-group otherwise.
type Chunk []string

// Term returns a single bare term chunk.
func Term(term string) Chunk {
	return Chunk{term}
}

// AnyOf returns an OR-group chunk.
func AnyOf(terms ...string) Chunk {
	return Chunk(terms)
}

// IsGroup reports whether the chunk is an OR-group.
func (c Chunk) IsGroup() bool {
	return len(c) > 1
}

// MarshalJSON renders a bare term as a string and a group as an array.
func (c Chunk) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// Special is an extracted key:value filter.
type Special struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Negated bool   `json:"negated,omitempty"`
}

// Weighted is a term extracted by a modifier, with its numeric weight.
type Weighted struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Query is a parsed tag search.
//
// Include chunks are AND-ed; members of a group chunk are OR-ed. Modifiers
// holds one list per registered modifier name, empty when nothing matched.
type Query struct {
	Include   []Chunk               `json:"include"`
	Specials  []Special             `json:"specials"`
	Modifiers map[string][]Weighted `json:"modifiers"`
}

// Modifier returns the weighted terms extracted for a modifier name.
func (q Query) Modifier(name string) []Weighted {
	if list, ok := q.Modifiers[name]; ok {
		return list
	}
	return []Weighted{}
}

// Special returns the first special with the given key.
func (q Query) Special(key string) (Special, bool) {
	for _, s := range q.Specials {
		if s.Key == key {
			return s, true
		}
	}
	return Special{}, false
}

// Empty reports whether the query has no include chunks.
func (q Query) Empty() bool {
	return len(q.Include) == 0
}

// IsNegated reports whether term carries the negation marker.
func IsNegated(term string) bool {
	return strings.HasPrefix(term, Negation)
}

// splitNegation returns the term without its marker and whether it was
// negated.
func splitNegation(term string) (string, bool) {
	if IsNegated(term) {
		return strings.TrimPrefix(term, Negation), true
	}
	return term, false
}
