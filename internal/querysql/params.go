package querysql

// Params is the parameter cache threaded through one compilation: an
// ordered value list plus the next placeholder index.
//
// A Params belongs to exactly one statement. Concurrent compilations must
// each use their own instance.
type Params struct {
	next   int
	values []any
}

// NewParams returns an empty cache whose first placeholder is 1.
func NewParams() *Params {
	return &Params{next: 1}
}

// Add appends v and returns its placeholder index.
func (p *Params) Add(v any) int {
	idx := p.next
	p.values = append(p.values, v)
	p.next++
	return idx
}

// Values returns the bound values in placeholder order.
func (p *Params) Values() []any {
	if p.values == nil {
		return []any{}
	}
	return p.values
}

// Snapshot returns a copy of the values bound so far.
func (p *Params) Snapshot() []any {
	out := make([]any, len(p.values))
	copy(out, p.values)
	return out
}

// Len returns the number of bound values.
func (p *Params) Len() int {
	return len(p.values)
}

// Next returns the index the next Add will return.
func (p *Params) Next() int {
	return p.next
}
