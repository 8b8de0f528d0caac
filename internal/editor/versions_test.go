package editor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lembarkolab/internal/blocks"
	"lembarkolab/internal/document/model"
)

// fakeStore records calls and can be told to fail.
type fakeStore struct {
	createErr   error
	createCalls int
	saveCalls   int
	versions    []model.Version
}

func (f *fakeStore) Load(ctx context.Context, documentID string) (*model.Document, error) {
	return nil, nil
}

func (f *fakeStore) Save(ctx context.Context, doc *model.Document) error {
	f.saveCalls++
	return nil
}

func (f *fakeStore) ListVersions(ctx context.Context, documentID string) ([]model.Version, error) {
	return f.versions, nil
}

func (f *fakeStore) CreateVersion(ctx context.Context, input model.CreateVersionInput) (*model.Version, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Version{
		ID:         uuid.NewString(),
		DocumentID: input.DocumentID,
		UserID:     input.UserID,
		Content:    &model.VersionContent{Pages: input.Pages},
		Name:       input.Name,
		CreatedAt:  time.Now(),
	}, nil
}

func (f *fakeStore) ListComments(ctx context.Context, documentID string) ([]model.Comment, error) {
	return nil, nil
}

func (f *fakeStore) CreateComment(ctx context.Context, input model.CreateCommentInput) (*model.Comment, error) {
	return nil, nil
}

func paragraph(text string) blocks.Document {
	return blocks.Document{Blocks: []blocks.Block{
		{Type: blocks.BlockTypeParagraph, Data: json.RawMessage(`{"text":"` + text + `"}`)},
	}}
}

func TestCreateVersionPrependsNewestFirst(t *testing.T) {
	store := &fakeStore{}
	v := NewVersions(store, "doc-1")
	pages := []model.Page{{ID: "p1", Title: "Page 1"}}

	v1, err := v.Create(context.Background(), "user-1", pages, "first")
	require.NoError(t, err)
	v2, err := v.Create(context.Background(), "user-1", pages, "second")
	require.NoError(t, err)

	list := v.List()
	require.Len(t, list, 2)
	assert.Equal(t, v2.ID, list[0].ID, "newest first")
	assert.Equal(t, v1.ID, list[1].ID)
}

func TestCreateVersionFailureNotAdded(t *testing.T) {
	store := &fakeStore{createErr: errors.New("db down")}
	v := NewVersions(store, "doc-1")

	_, err := v.Create(context.Background(), "user-1", nil, "broken")

	assert.Error(t, err)
	assert.Empty(t, v.List())
}

func TestLoadKeepsStoreOrder(t *testing.T) {
	store := &fakeStore{versions: []model.Version{
		{ID: "v2", Name: "newer"},
		{ID: "v1", Name: "older"},
	}}
	v := NewVersions(store, "doc-1")

	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.List(), 2)
	assert.Equal(t, "v2", v.List()[0].ID)
}

func TestRevertNilContentIsNoOp(t *testing.T) {
	store := &fakeStore{}
	v := NewVersions(store, "doc-1")
	p := NewPages(&model.Document{ID: "doc-1"})
	before := p.CurrentPage()

	v.Revert(model.Version{ID: "v1", Content: nil}, p, RevertPage)

	assert.Equal(t, before, p.CurrentPage())
	assert.Zero(t, store.saveCalls, "no persistence call for a preview revert")
	assert.Zero(t, store.createCalls)
}

func TestRevertPageRestoresOnlyCurrentPage(t *testing.T) {
	p := NewPages(&model.Document{ID: "doc-1"})
	p.AddPage()
	pages := p.List()
	snapContent := paragraph("snapshotted")
	version := model.Version{
		ID: "v1",
		Content: &model.VersionContent{Pages: []model.Page{
			{ID: pages[0].ID, Content: paragraph("other")},
			{ID: pages[1].ID, Content: snapContent},
		}},
	}
	otherBefore := p.List()[0]

	v := NewVersions(&fakeStore{}, "doc-1")
	v.Revert(version, p, RevertPage)

	assert.Equal(t, snapContent, p.CurrentPage().Content)
	assert.Equal(t, otherBefore, p.List()[0], "non-current page untouched")
}

func TestRevertDocumentRestoresAllPages(t *testing.T) {
	p := NewPages(&model.Document{ID: "doc-1"})
	p.AddPage()
	p.AddPage()
	version := model.Version{
		ID: "v1",
		Content: &model.VersionContent{Pages: []model.Page{
			{ID: "s1", Title: "Old Page 1", Content: paragraph("a")},
			{ID: "s2", Title: "Old Page 2", Content: paragraph("b")},
		}},
	}

	v := NewVersions(&fakeStore{}, "doc-1")
	v.Revert(version, p, RevertDocument)

	require.Len(t, p.List(), 2)
	assert.Equal(t, "s1", p.List()[0].ID)
	assert.Equal(t, "s1", p.CurrentPageID(), "current falls back to snapshot's first page")
}
