package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lembarkolab/internal/document/model"
)

func newMockRepo(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDocumentRepository(db), mock
}

func TestLoadDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	pages := []model.Page{{ID: "p1", Title: "Page 1"}}
	content, _ := json.Marshal(pages)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, type, sub_account_id, owner_id, content, updated_at FROM documents WHERE id = $1")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type", "sub_account_id", "owner_id", "content", "updated_at"}).
			AddRow("doc-1", "Launch Plan", "funnel", "sub-1", "alice", content, now))

	doc, err := repo.Load(context.Background(), "doc-1")

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Launch Plan", doc.Title)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "p1", doc.Pages[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMissingDocumentIsNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, type, sub_account_id, owner_id, content, updated_at FROM documents WHERE id = $1")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type", "sub_account_id", "owner_id", "content", "updated_at"}))

	doc, err := repo.Load(context.Background(), "nope")

	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestSavePersistsFullPageList(t *testing.T) {
	repo, mock := newMockRepo(t)

	doc := &model.Document{ID: "doc-1", Pages: []model.Page{{ID: "p1"}, {ID: "p2"}}}
	content, _ := json.Marshal(doc.Pages)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET content = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(content, "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListVersionsNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	vc, _ := json.Marshal(model.VersionContent{Pages: []model.Page{{ID: "p1"}}})
	newer := time.Now()
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id, user_id, content, name, created_at FROM versions WHERE document_id = $1 ORDER BY created_at DESC")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "user_id", "content", "name", "created_at"}).
			AddRow("v2", "doc-1", "alice", vc, "second", newer).
			AddRow("v1", "doc-1", "alice", vc, "first", older))

	versions, err := repo.ListVersions(context.Background(), "doc-1")

	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].ID, "newest first")
	require.NotNil(t, versions[0].Content)
	assert.Len(t, versions[0].Content.Pages, 1)
}

func TestCreateVersionReturnsRow(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO versions (id, document_id, user_id, content, name, created_at) VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	version, err := repo.CreateVersion(context.Background(), model.CreateVersionInput{
		DocumentID: "doc-1",
		UserID:     "alice",
		Pages:      []model.Page{{ID: "p1"}},
		Name:       "before redesign",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, version.ID)
	assert.Equal(t, "before redesign", version.Name)
	assert.Equal(t, now, version.CreatedAt)
	require.NotNil(t, version.Content)
	assert.Len(t, version.Content.Pages, 1)
}

func TestCommentsRoundTrip(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO comments (id, document_id, user_id, body, created_at) VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	comment, err := repo.CreateComment(context.Background(), model.CreateCommentInput{
		DocumentID: "doc-1",
		UserID:     "alice",
		Body:       "Looks good",
	})
	require.NoError(t, err)
	assert.Equal(t, "Looks good", comment.Body)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id, user_id, body, created_at FROM comments WHERE document_id = $1 ORDER BY created_at ASC")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "user_id", "body", "created_at"}).
			AddRow(comment.ID, "doc-1", "alice", "Looks good", now))

	comments, err := repo.ListComments(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].UserID)
}

func TestCheckAccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("doc-1", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.CheckAccess(context.Background(), "doc-1", "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}
