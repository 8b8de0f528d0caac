package editor

import (
	"context"

	"lembarkolab/internal/document/model"
	"lembarkolab/pkg/logger"
)

// RevertMode selects how much of a snapshot a revert restores. The editor UI
// historically restored only the active page even though snapshots hold every
// page; both behaviors are kept as explicit modes so the caller has to choose.
type RevertMode int

const (
	// RevertPage restores only the current page's content from the snapshot.
	RevertPage RevertMode = iota
	// RevertDocument restores the entire page list from the snapshot.
	RevertDocument
)

// Versions manages the named snapshots of one document for an editing
// session. The in-memory list is newest first, matching what listings
// display; it is never pruned.
type Versions struct {
	store    DocumentStore
	docID    string
	versions []model.Version
}

func NewVersions(store DocumentStore, documentID string) *Versions {
	return &Versions{store: store, docID: documentID}
}

// Load replaces the local list with the store's, newest first.
func (v *Versions) Load(ctx context.Context) error {
	versions, err := v.store.ListVersions(ctx, v.docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list versions for doc %s: %v", v.docID, err)
		return err
	}
	v.versions = versions
	return nil
}

// Create persists a snapshot of the given pages and prepends it to the local
// list. A snapshot that fails to persist is not added.
func (v *Versions) Create(ctx context.Context, userID string, pages []model.Page, name string) (*model.Version, error) {
	version, err := v.store.CreateVersion(ctx, model.CreateVersionInput{
		DocumentID: v.docID,
		UserID:     userID,
		Pages:      pages,
		Name:       name,
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to create version %q for doc %s: %v", name, v.docID, err)
		return nil, err
	}
	v.versions = append([]model.Version{*version}, v.versions...)
	return version, nil
}

// List returns the local snapshot list, newest first.
func (v *Versions) List() []model.Version {
	return v.versions
}

// Revert applies a snapshot to the page model. A snapshot with no content is
// a preview-only action: nothing is mutated and nothing is persisted.
func (v *Versions) Revert(version model.Version, pages *Pages, mode RevertMode) {
	if version.Content == nil || len(version.Content.Pages) == 0 {
		return
	}
	switch mode {
	case RevertDocument:
		doc := pages.Document()
		doc.Pages = append([]model.Page(nil), version.Content.Pages...)
		// The previous current page may be gone from the snapshot.
		if pages.indexOf(pages.current) < 0 {
			pages.current = doc.Pages[0].ID
		}
	default:
		// Restore only the active page. The snapshot's page matching the
		// current id wins; otherwise fall back to the snapshot's first page,
		// which is what the editor restored before pages could be reordered.
		snap := version.Content.Pages[0]
		for _, p := range version.Content.Pages {
			if p.ID == pages.CurrentPageID() {
				snap = p
				break
			}
		}
		pages.UpdateCurrentPageContent(snap.Content)
	}
}
