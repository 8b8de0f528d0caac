package editor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lembarkolab/internal/blocks"
	"lembarkolab/internal/document/model"
)

func newTestPages(t *testing.T, n int) *Pages {
	t.Helper()
	doc := &model.Document{ID: "doc-1", Title: "Test"}
	p := NewPages(doc)
	for i := 1; i < n; i++ {
		p.AddPage()
	}
	require.Len(t, doc.Pages, n)
	return p
}

func TestNewPagesGuaranteesOnePage(t *testing.T) {
	doc := &model.Document{ID: "doc-1"}
	p := NewPages(doc)

	require.Len(t, doc.Pages, 1)
	assert.Equal(t, doc.Pages[0].ID, p.CurrentPageID())
	assert.Equal(t, "Page 1", doc.Pages[0].Title)
}

func TestAddPageAppendsAndSelects(t *testing.T) {
	p := newTestPages(t, 1)

	p.AddPage()
	p.AddPage()

	pages := p.List()
	require.Len(t, pages, 3)
	assert.Equal(t, "Page 2", pages[1].Title)
	assert.Equal(t, "Page 3", pages[2].Title)
	assert.Equal(t, pages[2].ID, p.CurrentPageID(), "newest page becomes current")
}

func TestDeleteCurrentSelectsPredecessor(t *testing.T) {
	p := newTestPages(t, 3)
	pages := p.List()
	p1, p2, p3 := pages[0], pages[1], pages[2]

	require.NoError(t, p.SelectPage(p2.ID))
	require.NoError(t, p.DeletePage(p2.ID))

	remaining := p.List()
	require.Len(t, remaining, 2)
	assert.Equal(t, p1.ID, remaining[0].ID)
	assert.Equal(t, p3.ID, remaining[1].ID)
	assert.Equal(t, p1.ID, p.CurrentPageID(), "predecessor becomes current")
}

func TestDeleteFirstCurrentSelectsNewFirst(t *testing.T) {
	p := newTestPages(t, 2)
	first := p.List()[0]
	second := p.List()[1]

	require.NoError(t, p.SelectPage(first.ID))
	require.NoError(t, p.DeletePage(first.ID))

	assert.Equal(t, second.ID, p.CurrentPageID())
}

func TestDeleteNonCurrentKeepsCurrent(t *testing.T) {
	p := newTestPages(t, 3)
	current := p.CurrentPageID()

	require.NoError(t, p.DeletePage(p.List()[0].ID))
	assert.Equal(t, current, p.CurrentPageID())
}

func TestDeleteLastPageRejected(t *testing.T) {
	p := newTestPages(t, 1)
	only := p.List()[0]

	err := p.DeletePage(only.ID)

	assert.ErrorIs(t, err, ErrLastPage)
	require.Len(t, p.List(), 1)
	assert.Equal(t, only.ID, p.List()[0].ID)
	assert.Equal(t, only.ID, p.CurrentPageID())
}

func TestDeleteUnknownPage(t *testing.T) {
	p := newTestPages(t, 2)
	err := p.DeletePage("nope")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Len(t, p.List(), 2)
}

func TestSelectUnknownPage(t *testing.T) {
	p := newTestPages(t, 2)
	current := p.CurrentPageID()

	err := p.SelectPage("nope")

	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.Equal(t, current, p.CurrentPageID())
}

func TestCurrentIDAlwaysMemberAfterDeletes(t *testing.T) {
	p := newTestPages(t, 5)
	for len(p.List()) > 1 {
		require.NoError(t, p.DeletePage(p.CurrentPageID()))
		found := false
		for _, page := range p.List() {
			if page.ID == p.CurrentPageID() {
				found = true
			}
		}
		assert.True(t, found, "current id must reference an existing page")
	}
}

func TestUpdateCurrentPageContentTouchesOnlyCurrent(t *testing.T) {
	p := newTestPages(t, 3)
	pages := p.List()
	require.NoError(t, p.SelectPage(pages[1].ID))

	before0 := pages[0]
	before2 := pages[2]

	content := blocks.Document{Blocks: []blocks.Block{
		{Type: blocks.BlockTypeParagraph, Data: json.RawMessage(`{"text":"hi"}`)},
	}}
	p.UpdateCurrentPageContent(content)

	after := p.List()
	assert.Equal(t, content, after[1].Content)
	assert.Equal(t, before0, after[0], "non-current pages are structurally unchanged")
	assert.Equal(t, before2, after[2])
}
