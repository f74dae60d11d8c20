package graph

import (
	"strings"
)

// Snapshot is an immutable point-in-time view of the note graph. It is built
// wholesale by Store.LoadSnapshot and swapped atomically by the Cache, so
// in-flight queries never observe a torn state. All methods are read-only
// and safe for concurrent use.
type Snapshot struct {
	notes    map[string]*Note
	children map[string][]*Branch // parent note ID -> child branches, position order
	parents  map[string][]*Branch // note ID -> branches placing it, position order
	owned    map[string][]*Attribute
	options  map[string]string
}

func newSnapshot(notes map[string]*Note, branches []*Branch, attrs []*Attribute, options map[string]string) *Snapshot {
	s := &Snapshot{
		notes:    notes,
		children: make(map[string][]*Branch),
		parents:  make(map[string][]*Branch),
		owned:    make(map[string][]*Attribute),
		options:  options,
	}
	for _, b := range branches {
		// Branches pointing at missing notes are skipped rather than
		// surfaced: acyclicity and referential integrity are enforced
		// upstream by whatever writes the store.
		if _, ok := notes[b.NoteID]; !ok {
			continue
		}
		s.children[b.ParentNoteID] = append(s.children[b.ParentNoteID], b)
		s.parents[b.NoteID] = append(s.parents[b.NoteID], b)
	}
	for _, a := range attrs {
		if _, ok := notes[a.NoteID]; !ok {
			continue
		}
		s.owned[a.NoteID] = append(s.owned[a.NoteID], a)
	}
	return s
}

// GetNote returns the note with the given ID, or nil.
func (s *Snapshot) GetNote(noteID string) *Note {
	return s.notes[noteID]
}

// NoteCount returns the number of notes in the snapshot.
func (s *Snapshot) NoteCount() int {
	return len(s.notes)
}

// NoteIDs returns every note ID in the snapshot.
func (s *Snapshot) NoteIDs() []string {
	out := make([]string, 0, len(s.notes))
	for id := range s.notes {
		out = append(out, id)
	}
	return out
}

// Option returns the value of a key/value option, or empty string.
func (s *Snapshot) Option(name string) string {
	return s.options[name]
}

// OptionBool reports whether an option is set to a truthy value.
func (s *Snapshot) OptionBool(name string) bool {
	v := s.options[name]
	return v == "true" || v == "1"
}

// ChildBranches returns the branches under a parent, ordered by position.
func (s *Snapshot) ChildBranches(parentNoteID string) []*Branch {
	return s.children[parentNoteID]
}

// ParentBranches returns every placement of a note, ordered by position.
func (s *Snapshot) ParentBranches(noteID string) []*Branch {
	return s.parents[noteID]
}

// OwnedAttributes returns the attributes owned directly by a note.
func (s *Snapshot) OwnedAttributes(noteID string) []*Attribute {
	return s.owned[noteID]
}

// Attributes returns owned attributes plus attributes inherited from
// ancestors (those marked inheritable). Owned attributes come first. The
// upward walk is cycle-guarded; a note is visited at most once even when it
// is cloned under several parents.
func (s *Snapshot) Attributes(noteID string) []*Attribute {
	out := append([]*Attribute(nil), s.owned[noteID]...)

	visited := map[string]bool{noteID: true}
	queue := make([]string, 0, 4)
	for _, b := range s.parents[noteID] {
		queue = append(queue, b.ParentNoteID)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, a := range s.owned[cur] {
			if a.Inheritable {
				out = append(out, a)
			}
		}
		for _, b := range s.parents[cur] {
			queue = append(queue, b.ParentNoteID)
		}
	}
	return out
}

// LabelValue returns the value of the first label with the given name
// (owned or inherited) and whether it exists. Name lookup is case-sensitive.
func (s *Snapshot) LabelValue(noteID, name string) (string, bool) {
	for _, a := range s.Attributes(noteID) {
		if a.IsLabel() && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasTruthyLabel reports whether the note carries the label (owned or
// inherited) with a value other than "false".
func (s *Snapshot) HasTruthyLabel(noteID, name string) bool {
	v, ok := s.LabelValue(noteID, name)
	return ok && v != "false"
}

// LabelValues returns every value of the named label, owned and inherited.
func (s *Snapshot) LabelValues(noteID, name string) []string {
	var out []string
	for _, a := range s.Attributes(noteID) {
		if a.IsLabel() && a.Name == name {
			out = append(out, a.Value)
		}
	}
	return out
}

// Relations returns all relations with the given name, owned and inherited.
func (s *Snapshot) Relations(noteID, name string) []*Attribute {
	var out []*Attribute
	for _, a := range s.Attributes(noteID) {
		if a.IsRelation() && a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// IsArchived reports whether the note carries a truthy archived label,
// owned or inherited.
func (s *Snapshot) IsArchived(noteID string) bool {
	return s.HasTruthyLabel(noteID, LabelArchived)
}

// IsHidden reports whether every path from the note to the root passes
// through the hidden subtree. A clone placed outside the hidden subtree
// makes the note visible.
func (s *Snapshot) IsHidden(noteID string) bool {
	if noteID == HiddenNoteID {
		return true
	}
	if noteID == RootNoteID {
		return false
	}
	return !s.reachesRootAvoiding(noteID, HiddenNoteID, map[string]bool{})
}

func (s *Snapshot) reachesRootAvoiding(noteID, avoid string, visited map[string]bool) bool {
	if noteID == avoid || visited[noteID] {
		return false
	}
	if noteID == RootNoteID {
		return true
	}
	visited[noteID] = true
	for _, b := range s.parents[noteID] {
		if s.reachesRootAvoiding(b.ParentNoteID, avoid, visited) {
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether noteID lies in the subtree rooted at
// ancestorID (the ancestor itself counts).
func (s *Snapshot) IsDescendantOf(noteID, ancestorID string) bool {
	if noteID == ancestorID {
		return true
	}
	visited := map[string]bool{}
	var up func(id string) bool
	up = func(id string) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, b := range s.parents[id] {
			if b.ParentNoteID == ancestorID || up(b.ParentNoteID) {
				return true
			}
		}
		return false
	}
	return up(noteID)
}

// BestNotePath returns the shortest chain of note IDs from the root to the
// note, inclusive on both ends. Returns nil when the note is unreachable
// from the root. Ties are broken by branch position order, which makes the
// result deterministic for a given snapshot.
func (s *Snapshot) BestNotePath(noteID string) []string {
	return s.BestPathFrom(RootNoteID, noteID)
}

// BestPathFrom returns the shortest chain of note IDs from ancestorID down
// to noteID, inclusive on both ends, or nil when the two are not connected.
// Callers slice off the first element to get the path relative to the
// ancestor boundary.
func (s *Snapshot) BestPathFrom(ancestorID, noteID string) []string {
	if noteID == ancestorID {
		return []string{ancestorID}
	}
	if s.notes[noteID] == nil || s.notes[ancestorID] == nil {
		return nil
	}

	// BFS upward from the note; the first time the ancestor is dequeued we
	// have a shortest path.
	pred := map[string]string{noteID: ""}
	queue := []string{noteID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == ancestorID {
			var path []string
			for id := cur; id != ""; id = pred[id] {
				path = append(path, id)
			}
			// Already ancestor-first since we walked upward.
			return path
		}
		for _, b := range s.parents[cur] {
			if _, seen := pred[b.ParentNoteID]; seen {
				continue
			}
			pred[b.ParentNoteID] = cur
			queue = append(queue, b.ParentNoteID)
		}
	}
	return nil
}

// PathDepth returns the length of the best note path, or a large value for
// unreachable notes so they sort last in depth tie-breaks.
func (s *Snapshot) PathDepth(noteID string) int {
	p := s.BestNotePath(noteID)
	if p == nil {
		return 1 << 20
	}
	return len(p)
}

// NotePosition returns the position of the branch placing the note under
// the parent preceding it on its best path, or 0 for the root.
func (s *Snapshot) NotePosition(noteID string) int {
	p := s.BestNotePath(noteID)
	if len(p) < 2 {
		return 0
	}
	parent := p[len(p)-2]
	for _, b := range s.parents[noteID] {
		if b.ParentNoteID == parent {
			return b.NotePosition
		}
	}
	return 0
}

// Subtree returns the IDs of all notes in the subtree rooted at ancestorID,
// the ancestor included, walking child branches breadth-first with a
// visited set so clones are reported once. depth bounds the number of
// levels below the ancestor; negative depth means unlimited.
func (s *Snapshot) Subtree(ancestorID string, depth int) []string {
	if s.notes[ancestorID] == nil {
		return nil
	}
	type item struct {
		id    string
		level int
	}
	visited := map[string]bool{ancestorID: true}
	out := []string{ancestorID}
	queue := []item{{ancestorID, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth >= 0 && cur.level >= depth {
			continue
		}
		for _, b := range s.children[cur.id] {
			if visited[b.NoteID] {
				continue
			}
			visited[b.NoteID] = true
			out = append(out, b.NoteID)
			queue = append(queue, item{b.NoteID, cur.level + 1})
		}
	}
	return out
}

// TitlePath renders a chain of note IDs as a " / "-joined title breadcrumb.
// Unknown IDs are skipped.
func (s *Snapshot) TitlePath(ids []string) string {
	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := s.notes[id]; n != nil {
			titles = append(titles, n.Title)
		}
	}
	return strings.Join(titles, " / ")
}
