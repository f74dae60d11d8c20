package share

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brodal/ratatosk/internal/apperr"
	"github.com/brodal/ratatosk/internal/graph"
	"github.com/brodal/ratatosk/internal/testutil"
)

// shareStore builds the published fixture:
//
//	_hidden
//	└── _share "Shared Notes"
//	    ├── pub  "Public Docs"   (shareAlias=docs)
//	    │   ├── guide  "User Guide"
//	    │   └── apiref "API Reference"
//	    └── priv "Private Area"  (shareCredentials=bob:secret, inheritable)
//	        └── plan "Launch Plan"
//	root
//	└── personal "Personal"      (outside the share tree)
func shareStore(t *testing.T) *graph.Store {
	t.Helper()
	store := testutil.TestStore(t)

	testutil.MustCreateNote(t, store, graph.HiddenNoteID, graph.ShareRootID, "Shared Notes", "", 10)
	testutil.MustCreateNote(t, store, graph.ShareRootID, "pub", "Public Docs", "", 10)
	testutil.MustCreateNote(t, store, "pub", "guide", "User Guide", "installation steps", 10)
	testutil.MustCreateNote(t, store, "pub", "apiref", "API Reference", "", 20)
	testutil.MustCreateNote(t, store, graph.ShareRootID, "priv", "Private Area", "", 20)
	testutil.MustCreateNote(t, store, "priv", "plan", "Launch Plan", "", 10)
	testutil.MustCreateNote(t, store, graph.RootNoteID, "personal", "Personal", "", 10)

	testutil.MustLabel(t, store, "pub", graph.LabelShareAlias, "docs", false)
	testutil.MustLabel(t, store, "priv", graph.LabelShareCredentials, "bob:secret", true)

	return store
}

func shareSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	return testutil.TestCache(t, shareStore(t)).Snapshot()
}

func TestResolveNote(t *testing.T) {
	snap := shareSnapshot(t)

	// Alias resolves to the note carrying it.
	id, err := ResolveNote(snap, "docs")
	if err != nil || id != "pub" {
		t.Errorf("docs -> %q, %v; want pub", id, err)
	}

	// A raw ID inside the share tree resolves to itself.
	id, err = ResolveNote(snap, "guide")
	if err != nil || id != "guide" {
		t.Errorf("guide -> %q, %v", id, err)
	}

	// Notes outside the share tree and unknown IDs are both not found.
	if _, err := ResolveNote(snap, "personal"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("personal -> %v, want ErrNotFound", err)
	}
	if _, err := ResolveNote(snap, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("nope -> %v, want ErrNotFound", err)
	}
}

func TestShareID(t *testing.T) {
	snap := shareSnapshot(t)

	if got := ShareID(snap, "pub"); got != "docs" {
		t.Errorf("pub share id = %q, want docs", got)
	}
	if got := ShareID(snap, "guide"); got != "guide" {
		t.Errorf("guide share id = %q, want raw id", got)
	}
}

func TestCheckCredentials(t *testing.T) {
	snap := shareSnapshot(t)

	open := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := CheckCredentials(snap, "guide", open); err != nil {
		t.Errorf("unprotected note: %v", err)
	}

	// Protection is inherited from the parent's label.
	if err := CheckCredentials(snap, "plan", open); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("no credentials: %v, want ErrAccessDenied", err)
	}

	wrong := httptest.NewRequest(http.MethodGet, "/", nil)
	wrong.SetBasicAuth("bob", "wrong")
	if err := CheckCredentials(snap, "plan", wrong); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("wrong password: %v, want ErrAccessDenied", err)
	}

	right := httptest.NewRequest(http.MethodGet, "/", nil)
	right.SetBasicAuth("bob", "secret")
	if err := CheckCredentials(snap, "plan", right); err != nil {
		t.Errorf("correct credentials: %v", err)
	}
}

func TestCredentialEqual(t *testing.T) {
	if !credentialEqual("bob:secret", "bob:secret") {
		t.Error("equal credentials must compare equal")
	}
	if credentialEqual("bob:secret", "bob:secres") {
		t.Error("different credentials must not compare equal")
	}
	// Length mismatch must neither match nor panic.
	if credentialEqual("bob:s", "bob:secret") {
		t.Error("shorter credential must not match")
	}
}

func TestBreadcrumbPath(t *testing.T) {
	snap := shareSnapshot(t)

	if got := BreadcrumbPath(snap, graph.ShareRootID, "guide"); got != "Public Docs / User Guide" {
		t.Errorf("breadcrumb = %q", got)
	}
	if got := BreadcrumbPath(snap, "pub", "guide"); got != "User Guide" {
		t.Errorf("breadcrumb from pub = %q", got)
	}
	if got := BreadcrumbPath(snap, "pub", "pub"); got != "" {
		t.Errorf("self breadcrumb = %q, want empty", got)
	}
}

func TestIndexAccessible(t *testing.T) {
	store := shareStore(t)
	snap := testutil.TestCache(t, store).Snapshot()
	if err := IndexAccessible(snap); !errors.Is(err, apperr.ErrShareDisabled) {
		t.Errorf("disabled index -> %v, want ErrShareDisabled", err)
	}

	if err := store.SetOption(graph.OptionShareIndexEnabled, "true"); err != nil {
		t.Fatal(err)
	}
	snap = testutil.TestCache(t, store).Snapshot()
	if err := IndexAccessible(snap); err != nil {
		t.Errorf("enabled index -> %v", err)
	}
}

func TestRootID_Option(t *testing.T) {
	store := shareStore(t)
	if err := store.SetOption(graph.OptionShareRootID, "pub"); err != nil {
		t.Fatal(err)
	}
	snap := testutil.TestCache(t, store).Snapshot()
	if got := RootID(snap); got != "pub" {
		t.Errorf("root id = %q, want pub", got)
	}
}
