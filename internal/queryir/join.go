package queryir

// Join is a join description attached to a read query.
//
// This is a sealed interface - only JoinSpec and JoinList implement it.
// A single JoinSpec is aliased "j"; JoinList entries are aliased
// "j1", "j2", ... by list position.
type Join interface {
	joinNode()
}

// JoinKind selects the SQL join keyword.
type JoinKind string

const (
	JoinImplicit JoinKind = "implicit" // JOIN
	JoinInner    JoinKind = "inner"    // INNER JOIN
	JoinLeft     JoinKind = "left"     // LEFT JOIN
	JoinRight    JoinKind = "right"    // RIGHT JOIN
	JoinFull     JoinKind = "full"     // FULL JOIN
	JoinCross    JoinKind = "cross"    // CROSS JOIN, no ON clause
)

// JoinSpec joins one target table.
//
// On is raw SQL written by the caller (it usually references the
// generated alias, e.g. "j1.id = stories.author_id"). An empty Kind
// means JoinImplicit.
type JoinSpec struct {
	Table string   `json:"table" yaml:"table"`
	On    string   `json:"on,omitempty" yaml:"on,omitempty"`
	Kind  JoinKind `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func (JoinSpec) joinNode() {}

// JoinList is an ordered list of joins.
type JoinList []JoinSpec

func (JoinList) joinNode() {}
