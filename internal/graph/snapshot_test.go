package graph

import (
	"os"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ratatosk-graph-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustNote(t *testing.T, s *Store, parentID, noteID, title string, pos int) {
	t.Helper()
	if _, err := s.CreateNote(Note{NoteID: noteID, Title: title}, parentID, pos); err != nil {
		t.Fatalf("create %s: %v", noteID, err)
	}
}

func mustAttr(t *testing.T, s *Store, a Attribute) {
	t.Helper()
	if _, err := s.SetAttribute(a); err != nil {
		t.Fatalf("set attribute %s on %s: %v", a.Name, a.NoteID, err)
	}
}

// fixtureSnapshot builds a small graph:
//
//	root
//	├── projects (team=core inheritable, color=red)
//	│   └── alpha
//	│       └── notes
//	├── archive (archived inheritable)
//	│   └── old
//	├── draft (archived=false)
//	└── _hidden
//	    └── tools
//	        └── toolx   (also cloned directly under root)
func fixtureSnapshot(t *testing.T) (*Store, *Snapshot) {
	t.Helper()
	s := testStore(t)

	mustNote(t, s, RootNoteID, "projects", "Projects", 10)
	mustNote(t, s, "projects", "alpha", "Project Alpha", 10)
	mustNote(t, s, "alpha", "notes", "Notes", 10)
	mustNote(t, s, RootNoteID, "archive", "Archive", 20)
	mustNote(t, s, "archive", "old", "Old Stuff", 10)
	mustNote(t, s, RootNoteID, "draft", "Draft", 30)
	mustNote(t, s, HiddenNoteID, "tools", "Hidden Tools", 10)
	mustNote(t, s, "tools", "toolx", "Tool X", 10)

	mustAttr(t, s, Attribute{NoteID: "projects", Type: AttrLabel, Name: "team", Value: "core", Inheritable: true})
	mustAttr(t, s, Attribute{NoteID: "projects", Type: AttrLabel, Name: "color", Value: "red"})
	mustAttr(t, s, Attribute{NoteID: "archive", Type: AttrLabel, Name: LabelArchived, Inheritable: true})
	mustAttr(t, s, Attribute{NoteID: "draft", Type: AttrLabel, Name: LabelArchived, Value: "false"})

	// Clone toolx directly under the root, outside the hidden subtree.
	if err := s.CreateBranch(RootNoteID, "toolx", 40, ""); err != nil {
		t.Fatal(err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	return s, snap
}

func TestAttributes_Inheritance(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	// Inheritable label propagates down two levels.
	if v, ok := snap.LabelValue("notes", "team"); !ok || v != "core" {
		t.Errorf("notes team = %q, %v; want core, true", v, ok)
	}
	// Non-inheritable label does not propagate.
	if _, ok := snap.LabelValue("alpha", "color"); ok {
		t.Error("color should not be inherited")
	}
	// Owned attributes come first.
	mustHaveOwned := snap.OwnedAttributes("projects")
	if len(mustHaveOwned) != 2 {
		t.Fatalf("projects owned = %d, want 2", len(mustHaveOwned))
	}
}

func TestIsArchived(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	if !snap.IsArchived("archive") {
		t.Error("archive should be archived")
	}
	// Inherited archived label.
	if !snap.IsArchived("old") {
		t.Error("old should inherit archived")
	}
	// archived=false is not truthy.
	if snap.IsArchived("draft") {
		t.Error("draft has archived=false, should not count")
	}
	if snap.IsArchived("projects") {
		t.Error("projects is not archived")
	}
}

func TestIsHidden_CloneMakesVisible(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	if !snap.IsHidden(HiddenNoteID) {
		t.Error("_hidden itself is hidden")
	}
	if !snap.IsHidden("tools") {
		t.Error("tools only reachable through _hidden, should be hidden")
	}
	// toolx is cloned under the root, so one path avoids _hidden.
	if snap.IsHidden("toolx") {
		t.Error("toolx has a clone outside _hidden, should be visible")
	}
	if snap.IsHidden(RootNoteID) {
		t.Error("root is never hidden")
	}
}

func TestBestNotePath(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	got := snap.BestNotePath("notes")
	want := []string{RootNoteID, "projects", "alpha", "notes"}
	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}

	if snap.PathDepth("notes") != 4 {
		t.Errorf("depth = %d, want 4", snap.PathDepth("notes"))
	}

	// Cloned note takes the shortest path: root -> toolx.
	if p := snap.BestNotePath("toolx"); len(p) != 2 {
		t.Errorf("toolx best path = %v, want length 2", p)
	}

	if snap.BestNotePath("nope") != nil {
		t.Error("unknown note should have nil path")
	}
}

func TestBestPathFrom(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	got := snap.BestPathFrom("projects", "notes")
	if len(got) != 3 || got[0] != "projects" || got[2] != "notes" {
		t.Errorf("path from projects = %v", got)
	}
	if p := snap.BestPathFrom("archive", "notes"); p != nil {
		t.Errorf("unconnected path = %v, want nil", p)
	}
	if p := snap.BestPathFrom("alpha", "alpha"); len(p) != 1 {
		t.Errorf("self path = %v", p)
	}
}

func TestNotePosition(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	if pos := snap.NotePosition("archive"); pos != 20 {
		t.Errorf("archive position = %d, want 20", pos)
	}
	if pos := snap.NotePosition(RootNoteID); pos != 0 {
		t.Errorf("root position = %d, want 0", pos)
	}
}

func TestSubtree(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	all := snap.Subtree("projects", -1)
	if len(all) != 3 {
		t.Errorf("projects subtree = %v, want 3 notes", all)
	}

	// Depth 1 stops at direct children.
	shallow := snap.Subtree("projects", 1)
	if len(shallow) != 2 {
		t.Errorf("depth-1 subtree = %v, want [projects alpha]", shallow)
	}

	// Depth 0 is just the ancestor.
	if only := snap.Subtree("projects", 0); len(only) != 1 || only[0] != "projects" {
		t.Errorf("depth-0 subtree = %v", only)
	}

	if snap.Subtree("nope", -1) != nil {
		t.Error("unknown ancestor should yield nil")
	}

	// Clones are reported once even with multiple paths from the root.
	seen := 0
	for _, id := range snap.Subtree(RootNoteID, -1) {
		if id == "toolx" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("toolx reported %d times, want 1", seen)
	}
}

func TestIsDescendantOf(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	if !snap.IsDescendantOf("notes", "projects") {
		t.Error("notes is under projects")
	}
	if !snap.IsDescendantOf("projects", "projects") {
		t.Error("a note is its own descendant")
	}
	if snap.IsDescendantOf("old", "projects") {
		t.Error("old is not under projects")
	}
}

func TestTitlePath(t *testing.T) {
	_, snap := fixtureSnapshot(t)

	got := snap.TitlePath([]string{"projects", "alpha", "bogus"})
	if got != "Projects / Project Alpha" {
		t.Errorf("title path = %q", got)
	}
}

func TestOptions(t *testing.T) {
	s, _ := fixtureSnapshot(t)

	if err := s.SetOption(OptionShareIndexEnabled, "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOption(OptionHoistedNoteID, "projects"); err != nil {
		t.Fatal(err)
	}
	// Upsert overwrites.
	if err := s.SetOption(OptionHoistedNoteID, "alpha"); err != nil {
		t.Fatal(err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if !snap.OptionBool(OptionShareIndexEnabled) {
		t.Error("shareIndexEnabled should be truthy")
	}
	if v := snap.Option(OptionHoistedNoteID); v != "alpha" {
		t.Errorf("hoistedNoteId = %q, want alpha", v)
	}
	if snap.OptionBool("missing") {
		t.Error("missing option should be false")
	}
}

func TestStore_DeleteBranchKeepsNote(t *testing.T) {
	s, _ := fixtureSnapshot(t)

	// Removing the clone placement leaves the note reachable only through
	// the hidden subtree again.
	if err := s.DeleteBranch(RootNoteID, "toolx"); err != nil {
		t.Fatal(err)
	}
	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.GetNote("toolx") == nil {
		t.Fatal("note must survive branch deletion")
	}
	if !snap.IsHidden("toolx") {
		t.Error("toolx should be hidden again without the clone")
	}
}

func TestStore_DeleteAttribute(t *testing.T) {
	s := testStore(t)
	mustNote(t, s, RootNoteID, "n", "Note", 10)
	id, err := s.SetAttribute(Attribute{NoteID: "n", Type: AttrLabel, Name: "tag", Value: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAttribute(id); err != nil {
		t.Fatal(err)
	}
	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.OwnedAttributes("n")) != 0 {
		t.Error("attribute not deleted")
	}
}

func TestReservedNotesExist(t *testing.T) {
	s := testStore(t)
	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap.GetNote(RootNoteID) == nil {
		t.Error("root note missing")
	}
	if snap.GetNote(HiddenNoteID) == nil {
		t.Error("_hidden note missing")
	}
}
