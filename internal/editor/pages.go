package editor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lembarkolab/internal/blocks"
	"lembarkolab/internal/document/model"
)

var (
	// ErrLastPage rejects deleting the sole remaining page.
	ErrLastPage = errors.New("cannot delete the only page of a document")
	// ErrPageNotFound means the page id does not exist in this document.
	ErrPageNotFound = errors.New("page not found")
)

// Pages is the in-memory page model for one editing session. It owns the
// ordered page list of a document and keeps a current-page pointer that is
// always valid: the document never has fewer than one page and the current id
// always names an existing page.
//
// Not safe for concurrent use; an editing session mutates it from a single
// goroutine.
type Pages struct {
	doc     *model.Document
	current string
}

// NewPages wraps a loaded document. A document with no pages gets an initial
// empty page so the invariants hold from the start.
func NewPages(doc *model.Document) *Pages {
	p := &Pages{doc: doc}
	if len(doc.Pages) == 0 {
		doc.Pages = []model.Page{newPage(1)}
	}
	p.current = doc.Pages[0].ID
	return p
}

func newPage(n int) model.Page {
	return model.Page{
		ID:        uuid.NewString(),
		Title:     fmt.Sprintf("Page %d", n),
		Content:   blocks.Document{Blocks: []blocks.Block{}},
		CreatedAt: time.Now(),
	}
}

// AddPage appends a new empty page and makes it current. It cannot fail.
func (p *Pages) AddPage() model.Page {
	page := newPage(len(p.doc.Pages) + 1)
	p.doc.Pages = append(p.doc.Pages, page)
	p.current = page.ID
	return page
}

// DeletePage removes a page. Deleting the last remaining page is rejected
// with ErrLastPage and nothing changes. When the deleted page was current,
// the predecessor becomes current (or the new first page when the first page
// was deleted).
func (p *Pages) DeletePage(pageID string) error {
	if len(p.doc.Pages) == 1 {
		return ErrLastPage
	}
	idx := p.indexOf(pageID)
	if idx < 0 {
		return ErrPageNotFound
	}
	p.doc.Pages = append(p.doc.Pages[:idx], p.doc.Pages[idx+1:]...)
	if p.current == pageID {
		next := idx - 1
		if next < 0 {
			next = 0
		}
		p.current = p.doc.Pages[next].ID
	}
	return nil
}

// SelectPage makes an existing page current.
func (p *Pages) SelectPage(pageID string) error {
	if p.indexOf(pageID) < 0 {
		return ErrPageNotFound
	}
	p.current = pageID
	return nil
}

// UpdateCurrentPageContent replaces only the current page's block content.
// Every other page value is left untouched so callers can diff by identity.
func (p *Pages) UpdateCurrentPageContent(content blocks.Document) {
	idx := p.indexOf(p.current)
	p.doc.Pages[idx].Content = content
}

// CurrentPage returns a copy of the current page.
func (p *Pages) CurrentPage() model.Page {
	return p.doc.Pages[p.indexOf(p.current)]
}

// CurrentPageID returns the current page id.
func (p *Pages) CurrentPageID() string {
	return p.current
}

// List returns the ordered page slice. Callers must not mutate it.
func (p *Pages) List() []model.Page {
	return p.doc.Pages
}

// Document returns the underlying document.
func (p *Pages) Document() *model.Document {
	return p.doc
}

func (p *Pages) indexOf(pageID string) int {
	for i := range p.doc.Pages {
		if p.doc.Pages[i].ID == pageID {
			return i
		}
	}
	return -1
}
