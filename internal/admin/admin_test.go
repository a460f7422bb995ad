package admin

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	articlehandler "newsdesk/internal/article"
	"newsdesk/internal/article/model"
	authsvc "newsdesk/internal/auth/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	articles  []model.Article
	created   []model.Draft
	updated   map[string]model.Draft
	deleted   []string
	tokens    []string
	saveErr   error
	listCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updated: map[string]model.Draft{}}
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	if username != "admin" || password != "password" {
		return "", errors.New("401: Invalid credentials")
	}
	return "tok-1", nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (authsvc.Identity, error) {
	if token != "tok-1" {
		return authsvc.Identity{}, errors.New("401: Unauthorized")
	}
	return authsvc.Identity{Username: "admin", ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

func (f *fakeAPI) ListArticles(context.Context, string) ([]model.Article, error) {
	f.listCalls++
	return f.articles, nil
}

func (f *fakeAPI) CreateArticle(_ context.Context, token string, d model.Draft) (model.Article, error) {
	f.tokens = append(f.tokens, token)
	if f.saveErr != nil {
		return model.Article{}, f.saveErr
	}
	f.created = append(f.created, d)
	a := model.Article{ID: "new", Title: d.Title, Category: d.Category}
	f.articles = append([]model.Article{a}, f.articles...)
	return a, nil
}

func (f *fakeAPI) UpdateArticle(_ context.Context, token, id string, d model.Draft) (model.Article, error) {
	f.tokens = append(f.tokens, token)
	if f.saveErr != nil {
		return model.Article{}, f.saveErr
	}
	f.updated[id] = d
	return model.Article{ID: id, Title: d.Title}, nil
}

func (f *fakeAPI) DeleteArticle(_ context.Context, token, id string) error {
	f.tokens = append(f.tokens, token)
	f.deleted = append(f.deleted, id)
	return nil
}

func newDashboard(t *testing.T, api *fakeAPI) *Dashboard {
	t.Helper()
	session, err := Login(context.Background(), api, "admin", "password")
	require.NoError(t, err)
	return NewDashboard(api, session)
}

func TestLoginBuildsSession(t *testing.T) {
	api := newFakeAPI()
	session, err := Login(context.Background(), api, "admin", "password")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "admin", session.Username)
	assert.True(t, session.Valid(time.Now()))
	assert.False(t, session.Valid(time.Now().Add(25*time.Hour)))

	_, err = Login(context.Background(), api, "admin", "nope")
	assert.Error(t, err)

	_, err = Resume(context.Background(), api, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSubmitCreate(t *testing.T) {
	api := newFakeAPI()
	d := newDashboard(t, api)

	d.Draft = model.Draft{Title: "A", Summary: "B", Content: "C", Category: "news"}
	saved, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", saved.ID)

	require.Len(t, api.created, 1)
	assert.Equal(t, []string{"tok-1"}, api.tokens)
	assert.Equal(t, model.Draft{}, d.Draft)
	assert.Len(t, d.Articles(), 1)
	assert.Equal(t, 1, api.listCalls)
}

func TestSubmitEdit(t *testing.T) {
	api := newFakeAPI()
	d := newDashboard(t, api)

	d.Edit(model.Article{
		ID: "a1", Title: "T", Summary: "S", Content: "C", Category: "Tech",
		Date: time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC),
	})
	id, editing := d.Editing()
	assert.True(t, editing)
	assert.Equal(t, "a1", id)
	assert.Equal(t, "2024-03-15", d.Draft.Date)

	d.Draft.Title = "T2"
	_, err := d.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "T2", api.updated["a1"].Title)
	assert.Empty(t, api.created)
	_, editing = d.Editing()
	assert.False(t, editing)
}

func TestSubmitFailureKeepsState(t *testing.T) {
	api := newFakeAPI()
	api.saveErr = errors.New("400: title is required")
	d := newDashboard(t, api)

	d.Edit(model.Article{ID: "a1", Title: "T"})
	d.Draft.Title = ""
	_, err := d.Submit(context.Background())

	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.ErrorContains(t, err, "title is required")
	id, editing := d.Editing()
	assert.True(t, editing)
	assert.Equal(t, "a1", id)
	assert.Zero(t, api.listCalls)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := newFakeAPI()
	d := newDashboard(t, api)

	var prompt string
	err := d.Delete(context.Background(), "a1", ConfirmFunc(func(p string) bool {
		prompt = p
		return false
	}))
	assert.ErrorIs(t, err, ErrDeleteCancelled)
	assert.Equal(t, "Are you sure you want to delete?", prompt)
	assert.Empty(t, api.deleted)

	assert.ErrorIs(t, d.Delete(context.Background(), "a1", nil), ErrDeleteCancelled)
	assert.Empty(t, api.deleted)

	d.Edit(model.Article{ID: "a1"})
	require.NoError(t, d.Delete(context.Background(), "a1", ConfirmFunc(func(string) bool { return true })))
	assert.Equal(t, []string{"a1"}, api.deleted)
	_, editing := d.Editing()
	assert.False(t, editing)
	assert.Equal(t, 1, api.listCalls)
}

// 1x1 transparent PNG.
var pixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func TestEncodeImage(t *testing.T) {
	uri, err := EncodeImage("pixel.bin", bytes.NewReader(pixel))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, pixel, payload)

	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`
	uri, err = EncodeImage("logo.svg", strings.NewReader(svg))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/svg+xml;base64,"))

	_, err = EncodeImage("notes.txt", strings.NewReader("just text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = EncodeImage("huge.png", bytes.NewReader(make([]byte, MaxImageBytes+1)))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestLargestImageFitsRequestLimit(t *testing.T) {
	raw := make([]byte, MaxImageBytes)
	copy(raw, "\x89PNG\r\n\x1a\n")
	uri, err := EncodeImage("big.png", bytes.NewReader(raw))
	require.NoError(t, err)

	body, err := json.Marshal(model.Draft{
		Title:    strings.Repeat("t", 200),
		Summary:  strings.Repeat("s", 1000),
		Content:  strings.Repeat("c", 20000),
		Category: "Tech",
		Date:     "2024-06-03",
		Image:    uri,
	})
	require.NoError(t, err)
	assert.Less(t, len(body), articlehandler.MaxBodyBytes)
}

func TestAttachImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, pixel, 0o600))

	d := NewDashboard(newFakeAPI(), Session{Token: "tok-1"})
	require.NoError(t, d.AttachImage(path))
	assert.True(t, strings.HasPrefix(d.Draft.Image, "data:image/png;base64,"))

	assert.Error(t, d.AttachImage(filepath.Join(t.TempDir(), "missing.png")))
}
