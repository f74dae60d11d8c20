package graph

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	note_id TEXT PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	type    TEXT NOT NULL DEFAULT 'text',
	mime    TEXT NOT NULL DEFAULT 'text/html',
	content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS branches (
	branch_id      TEXT PRIMARY KEY,
	parent_note_id TEXT NOT NULL,
	note_id        TEXT NOT NULL,
	note_position  INTEGER NOT NULL DEFAULT 0,
	prefix         TEXT NOT NULL DEFAULT '',
	UNIQUE(parent_note_id, note_id)
);

CREATE TABLE IF NOT EXISTS attributes (
	attribute_id   TEXT PRIMARY KEY,
	note_id        TEXT NOT NULL,
	type           TEXT NOT NULL,
	name           TEXT NOT NULL,
	value          TEXT NOT NULL DEFAULT '',
	is_inheritable INTEGER NOT NULL DEFAULT 0,
	position       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS options (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_branches_parent ON branches(parent_note_id);
CREATE INDEX IF NOT EXISTS idx_branches_note   ON branches(note_id);
CREATE INDEX IF NOT EXISTS idx_attributes_note ON attributes(note_id);
CREATE INDEX IF NOT EXISTS idx_attributes_name ON attributes(name);
`

// Store wraps a sql.DB with note graph operations. The store is the system
// of record; search never reads it directly and instead works off an
// immutable Snapshot built by LoadSnapshot.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database, applies the schema, and
// ensures the reserved root and hidden notes exist.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("graph: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("graph: apply schema: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.ensureReservedNotes(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// ensureReservedNotes creates the root note and the hidden subtree root if
// they are missing. The hidden root is a regular child of root; notes whose
// every path passes through it are excluded from search by default.
func (s *Store) ensureReservedNotes() error {
	reserved := []struct {
		id, title, parent string
		position          int
	}{
		{RootNoteID, "root", "", 0},
		{HiddenNoteID, "Hidden Notes", RootNoteID, 999},
	}
	for _, r := range reserved {
		_, err := s.conn.Exec(`INSERT OR IGNORE INTO notes (note_id, title, type, mime) VALUES (?, ?, 'text', 'text/html')`,
			r.id, r.title)
		if err != nil {
			return fmt.Errorf("graph: ensure note %s: %w", r.id, err)
		}
		if r.parent == "" {
			continue
		}
		_, err = s.conn.Exec(`INSERT OR IGNORE INTO branches (branch_id, parent_note_id, note_id, note_position) VALUES (?, ?, ?, ?)`,
			r.parent+"_"+r.id, r.parent, r.id, r.position)
		if err != nil {
			return fmt.Errorf("graph: ensure branch %s: %w", r.id, err)
		}
	}
	return nil
}

// NewID returns a fresh entity ID.
func NewID() string {
	return uuid.NewString()
}

// CreateNote inserts a note and its first branch under parentNoteID.
// Empty NoteID is filled with a generated ID. Returns the note ID.
func (s *Store) CreateNote(n Note, parentNoteID string, position int) (string, error) {
	if n.NoteID == "" {
		n.NoteID = NewID()
	}
	if n.Type == "" {
		n.Type = "text"
	}
	if n.Mime == "" {
		n.Mime = "text/html"
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`INSERT INTO notes (note_id, title, type, mime, content) VALUES (?, ?, ?, ?, ?)`,
		n.NoteID, n.Title, n.Type, n.Mime, n.Content)
	if err != nil {
		return "", fmt.Errorf("graph: insert note: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO branches (branch_id, parent_note_id, note_id, note_position) VALUES (?, ?, ?, ?)`,
		NewID(), parentNoteID, n.NoteID, position)
	if err != nil {
		return "", fmt.Errorf("graph: insert branch: %w", err)
	}
	return n.NoteID, tx.Commit()
}

// CreateBranch places an existing note under an additional parent (clone).
func (s *Store) CreateBranch(parentNoteID, noteID string, position int, prefix string) error {
	_, err := s.conn.Exec(`INSERT INTO branches (branch_id, parent_note_id, note_id, note_position, prefix) VALUES (?, ?, ?, ?, ?)`,
		NewID(), parentNoteID, noteID, position, prefix)
	if err != nil {
		return fmt.Errorf("graph: insert branch: %w", err)
	}
	return nil
}

// DeleteBranch removes one placement of a note. The note itself survives as
// long as other branches point to it.
func (s *Store) DeleteBranch(parentNoteID, noteID string) error {
	_, err := s.conn.Exec(`DELETE FROM branches WHERE parent_note_id = ? AND note_id = ?`, parentNoteID, noteID)
	if err != nil {
		return fmt.Errorf("graph: delete branch: %w", err)
	}
	return nil
}

// SetAttribute inserts an attribute. Empty AttributeID is generated.
func (s *Store) SetAttribute(a Attribute) (string, error) {
	if a.AttributeID == "" {
		a.AttributeID = NewID()
	}
	inheritable := 0
	if a.Inheritable {
		inheritable = 1
	}
	_, err := s.conn.Exec(`INSERT INTO attributes (attribute_id, note_id, type, name, value, is_inheritable, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.AttributeID, a.NoteID, a.Type, a.Name, a.Value, inheritable, a.Position)
	if err != nil {
		return "", fmt.Errorf("graph: insert attribute: %w", err)
	}
	return a.AttributeID, nil
}

// DeleteAttribute removes an attribute by ID.
func (s *Store) DeleteAttribute(attributeID string) error {
	_, err := s.conn.Exec(`DELETE FROM attributes WHERE attribute_id = ?`, attributeID)
	if err != nil {
		return fmt.Errorf("graph: delete attribute: %w", err)
	}
	return nil
}

// SetOption upserts a key/value option.
func (s *Store) SetOption(name, value string) error {
	_, err := s.conn.Exec(`INSERT INTO options (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value)
	if err != nil {
		return fmt.Errorf("graph: set option: %w", err)
	}
	return nil
}

// LoadSnapshot reads the whole graph into an immutable Snapshot.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	notes := make(map[string]*Note)
	rows, err := s.conn.Query(`SELECT note_id, title, type, mime, content FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("graph: load notes: %w", err)
	}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.NoteID, &n.Title, &n.Type, &n.Mime, &n.Content); err != nil {
			rows.Close()
			return nil, err
		}
		notes[n.NoteID] = &n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var branches []*Branch
	rows, err = s.conn.Query(`SELECT branch_id, parent_note_id, note_id, note_position, prefix FROM branches ORDER BY note_position, note_id`)
	if err != nil {
		return nil, fmt.Errorf("graph: load branches: %w", err)
	}
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.BranchID, &b.ParentNoteID, &b.NoteID, &b.NotePosition, &b.Prefix); err != nil {
			rows.Close()
			return nil, err
		}
		branches = append(branches, &b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var attrs []*Attribute
	rows, err = s.conn.Query(`SELECT attribute_id, note_id, type, name, value, is_inheritable, position FROM attributes ORDER BY position, attribute_id`)
	if err != nil {
		return nil, fmt.Errorf("graph: load attributes: %w", err)
	}
	for rows.Next() {
		var a Attribute
		var inheritable int
		if err := rows.Scan(&a.AttributeID, &a.NoteID, &a.Type, &a.Name, &a.Value, &inheritable, &a.Position); err != nil {
			rows.Close()
			return nil, err
		}
		a.Inheritable = inheritable != 0
		attrs = append(attrs, &a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	options := make(map[string]string)
	rows, err = s.conn.Query(`SELECT name, value FROM options`)
	if err != nil {
		return nil, fmt.Errorf("graph: load options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		options[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return newSnapshot(notes, branches, attrs, options), nil
}
