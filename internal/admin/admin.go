package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsdesk/internal/article/model"
	authsvc "newsdesk/internal/auth/service"
	"newsdesk/pkg/logger"
)

var (
	ErrSaveFailed      = errors.New("error saving article")
	ErrDeleteCancelled = errors.New("delete cancelled")
	ErrNoSession       = errors.New("not logged in")
)

// API is the subset of client.Client the admin workflow drives.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (authsvc.Identity, error)
	ListArticles(ctx context.Context, category string) ([]model.Article, error)
	CreateArticle(ctx context.Context, token string, d model.Draft) (model.Article, error)
	UpdateArticle(ctx context.Context, token, id string, d model.Draft) (model.Article, error)
	DeleteArticle(ctx context.Context, token, id string) error
}

// Session is the admin's proof of login. It is passed explicitly to the
// dashboard; nothing is kept in package state.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

// Login exchanges credentials for a Session.
func Login(ctx context.Context, api API, username, password string) (Session, error) {
	token, err := api.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	return Resume(ctx, api, token)
}

// Resume rebuilds a Session from a previously issued token, failing if the
// server no longer accepts it.
func Resume(ctx context.Context, api API, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	id, err := api.Me(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Username: id.Username, ExpiresAt: id.ExpiresAt}, nil
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Dashboard holds the admin form state between actions.
type Dashboard struct {
	api      API
	session  Session
	Draft    model.Draft
	editing  bool
	editID   string
	articles []model.Article
}

func NewDashboard(api API, session Session) *Dashboard {
	return &Dashboard{api: api, session: session}
}

func (d *Dashboard) Session() Session { return d.session }

func (d *Dashboard) Articles() []model.Article {
	return append([]model.Article(nil), d.articles...)
}

// Editing reports the id being edited, if any.
func (d *Dashboard) Editing() (string, bool) {
	return d.editID, d.editing
}

func (d *Dashboard) Refresh(ctx context.Context) error {
	articles, err := d.api.ListArticles(ctx, "")
	if err != nil {
		return fmt.Errorf("refresh articles: %w", err)
	}
	d.articles = articles
	return nil
}

// Edit loads an article into the draft and switches to edit mode.
func (d *Dashboard) Edit(a model.Article) {
	date := ""
	if !a.Date.IsZero() {
		date = a.Date.Format(model.DateLayout)
	}
	d.Draft = model.Draft{
		Title:    a.Title,
		Summary:  a.Summary,
		Content:  a.Content,
		Category: a.Category,
		Image:    a.Image,
		Date:     date,
	}
	d.editing = true
	d.editID = a.ID
}

// Reset clears the draft and leaves edit mode.
func (d *Dashboard) Reset() {
	d.Draft = model.Draft{}
	d.editing = false
	d.editID = ""
}

// Submit creates or updates depending on mode. On success the form is reset
// and the list refetched; on failure state is left untouched.
func (d *Dashboard) Submit(ctx context.Context) (model.Article, error) {
	var (
		saved model.Article
		err   error
	)
	if d.editing {
		saved, err = d.api.UpdateArticle(ctx, d.session.Token, d.editID, d.Draft)
	} else {
		saved, err = d.api.CreateArticle(ctx, d.session.Token, d.Draft)
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	d.Reset()
	if err := d.Refresh(ctx); err != nil {
		logger.Sugar.Warnf("Saved article %s but could not refresh list: %v", saved.ID, err)
	}
	return saved, nil
}

// Delete removes an article after the confirmer agrees.
func (d *Dashboard) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm("Are you sure you want to delete?") {
		return ErrDeleteCancelled
	}
	if err := d.api.DeleteArticle(ctx, d.session.Token, id); err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	if d.editing && d.editID == id {
		d.Reset()
	}
	if err := d.Refresh(ctx); err != nil {
		logger.Sugar.Warnf("Deleted article %s but could not refresh list: %v", id, err)
	}
	return nil
}
