// Package graph provides the SQLite-backed note graph store and the
// immutable in-memory snapshot that search executes against.
package graph

// Reserved note IDs.
const (
	RootNoteID   = "root"
	HiddenNoteID = "_hidden"
	ShareRootID  = "_share"
)

// Attribute types.
const (
	AttrLabel    = "label"
	AttrRelation = "relation"
)

// Well-known option names.
const (
	OptionHoistedNoteID     = "hoistedNoteId"
	OptionShareRootID       = "shareRootId"
	OptionShareIndexEnabled = "shareIndexEnabled"
)

// Well-known attribute names.
const (
	LabelArchived         = "archived"
	LabelShareAlias       = "shareAlias"
	LabelShareCredentials = "shareCredentials"
)

// Note is a single note in the graph. Notes form a DAG through branches:
// cloning a note creates an additional branch without duplicating identity.
type Note struct {
	NoteID  string
	Title   string
	Type    string // text, code, search, book, ...
	Mime    string
	Content string
}

// Branch is one placement of a note under a parent. Identity is the
// (parent, note) pair; NotePosition orders siblings.
type Branch struct {
	BranchID     string
	ParentNoteID string
	NoteID       string
	NotePosition int
	Prefix       string
}

// Attribute is a label (optionally valued tag) or a relation (typed edge,
// value holds the target note ID) owned by exactly one note. Inheritable
// attributes propagate to descendant notes.
type Attribute struct {
	AttributeID string
	NoteID      string
	Type        string
	Name        string
	Value       string
	Inheritable bool
	Position    int
}

// IsLabel reports whether the attribute is a label.
func (a *Attribute) IsLabel() bool { return a.Type == AttrLabel }

// IsRelation reports whether the attribute is a relation.
func (a *Attribute) IsRelation() bool { return a.Type == AttrRelation }

// TargetNoteID returns the relation target, or empty string for labels.
func (a *Attribute) TargetNoteID() string {
	if a.Type != AttrRelation {
		return ""
	}
	return a.Value
}

// Truthy reports label truthiness: present and not literally "false".
func (a *Attribute) Truthy() bool {
	return a.Value != "false"
}
