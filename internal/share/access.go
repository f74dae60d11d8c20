// Package share implements the public share-search surface: a search
// endpoint over the published subset of the note graph, with per-note
// credential checks re-validated before any title or path is exposed.
package share

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/brodal/ratatosk/internal/apperr"
	"github.com/brodal/ratatosk/internal/graph"
)

// RootID returns the configured share root note, falling back to the
// reserved _share note.
func RootID(snap *graph.Snapshot) string {
	if v := snap.Option(graph.OptionShareRootID); v != "" {
		return v
	}
	return graph.ShareRootID
}

// IndexAccessible reports whether the share index itself may be addressed.
// Searching from the share root lists everything published, so it is opt-in.
func IndexAccessible(snap *graph.Snapshot) error {
	if !snap.OptionBool(graph.OptionShareIndexEnabled) {
		return apperr.ErrShareDisabled
	}
	return nil
}

// ResolveNote maps an external identifier (a shareAlias label value or a
// raw note ID) to a note inside the share subtree. Unknown and unshared
// notes both come back as ErrNotFound so existence is never leaked.
func ResolveNote(snap *graph.Snapshot, idOrAlias string) (string, error) {
	root := RootID(snap)
	for _, id := range snap.Subtree(root, -1) {
		for _, a := range snap.OwnedAttributes(id) {
			if a.IsLabel() && a.Name == graph.LabelShareAlias && a.Value == idOrAlias {
				return id, nil
			}
		}
	}
	if snap.GetNote(idOrAlias) != nil && snap.IsDescendantOf(idOrAlias, root) {
		return idOrAlias, nil
	}
	return "", apperr.ErrNotFound
}

// ShareID returns the external identifier for a note: its owned shareAlias
// label value when present, the raw note ID otherwise.
func ShareID(snap *graph.Snapshot, noteID string) string {
	for _, a := range snap.OwnedAttributes(noteID) {
		if a.IsLabel() && a.Name == graph.LabelShareAlias && a.Value != "" {
			return a.Value
		}
	}
	return noteID
}

// CheckCredentials validates the request against the note's
// shareCredentials labels (owned and inherited, so an inheritable label
// protects a whole published subtree). Notes with no credential labels are
// open. A descendant may carry its own labels distinct from its ancestor's;
// each note is checked independently by the handler.
func CheckCredentials(snap *graph.Snapshot, noteID string, r *http.Request) error {
	creds := snap.LabelValues(noteID, graph.LabelShareCredentials)
	if len(creds) == 0 {
		return nil
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return apperr.ErrAccessDenied
	}
	presented := user + ":" + pass
	for _, c := range creds {
		if credentialEqual(presented, c) {
			return nil
		}
	}
	return apperr.ErrAccessDenied
}

// credentialEqual compares credentials in constant time. Both sides are
// hashed first so a length mismatch cannot short-circuit the comparison.
func credentialEqual(presented, expected string) bool {
	hp := sha256.Sum256([]byte(presented))
	he := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(hp[:], he[:]) == 1
}

// BreadcrumbPath renders the note's path relative to the ancestor boundary
// as a " / "-joined title breadcrumb. The ancestor itself is excluded, and
// only notes inside the share subtree contribute.
func BreadcrumbPath(snap *graph.Snapshot, ancestorID, noteID string) string {
	chain := snap.BestPathFrom(ancestorID, noteID)
	if len(chain) <= 1 {
		return ""
	}
	root := RootID(snap)
	visible := make([]string, 0, len(chain)-1)
	for _, id := range chain[1:] {
		if snap.IsDescendantOf(id, root) {
			visible = append(visible, id)
		}
	}
	return snap.TitlePath(visible)
}
