package service

import (
	"context"

	"newsdesk/internal/article/model"
	authsvc "newsdesk/internal/auth/service"
)

// Store is the persistence the service needs; repository.ArticleRepository satisfies it.
type Store interface {
	Insert(ctx context.Context, a model.Article) (model.Article, error)
	FindByID(ctx context.Context, id string) (model.Article, error)
	List(ctx context.Context, filter model.Filter) ([]model.Article, error)
	Update(ctx context.Context, id string, a model.Article) (model.Article, error)
	Delete(ctx context.Context, id string) error
}

// Publisher receives committed mutations.
type Publisher interface {
	Publish(evt model.Event)
}

type ArticleService struct {
	store    Store
	verifier authsvc.Verifier
	events   Publisher
}

// NewArticleService wires the store and token verifier. events may be nil.
func NewArticleService(store Store, verifier authsvc.Verifier, events Publisher) *ArticleService {
	return &ArticleService{store: store, verifier: verifier, events: events}
}

func (s *ArticleService) List(ctx context.Context, filter model.Filter) ([]model.Article, error) {
	filter.Category = model.CanonicalCategory(filter.Category)
	return s.store.List(ctx, filter)
}

func (s *ArticleService) Get(ctx context.Context, id string) (model.Article, error) {
	return s.store.FindByID(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, token string, draft model.Draft) (model.Article, error) {
	a, err := s.prepare(token, draft)
	if err != nil {
		return model.Article{}, err
	}
	created, err := s.store.Insert(ctx, a)
	if err != nil {
		return model.Article{}, err
	}
	s.publish(model.ArticleCreated, created.ID, &created)
	return created, nil
}

func (s *ArticleService) Update(ctx context.Context, token, id string, draft model.Draft) (model.Article, error) {
	a, err := s.prepare(token, draft)
	if err != nil {
		return model.Article{}, err
	}
	updated, err := s.store.Update(ctx, id, a)
	if err != nil {
		return model.Article{}, err
	}
	s.publish(model.ArticleUpdated, updated.ID, &updated)
	return updated, nil
}

// Authorize reports whether token may mutate articles.
func (s *ArticleService) Authorize(token string) error {
	_, err := s.verifier.Verify(token)
	return err
}

func (s *ArticleService) Delete(ctx context.Context, token, id string) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(model.ArticleDeleted, id, nil)
	return nil
}

// prepare authorizes the caller, validates the draft and builds the canonical article.
// It never touches the store.
func (s *ArticleService) prepare(token string, draft model.Draft) (model.Article, error) {
	if err := s.Authorize(token); err != nil {
		return model.Article{}, err
	}
	if err := draft.Validate(); err != nil {
		return model.Article{}, err
	}
	date, _, _ := draft.ParseDate()
	return model.Article{
		Title:    draft.Title,
		Summary:  draft.Summary,
		Content:  draft.Content,
		Category: model.CanonicalCategory(draft.Category),
		Image:    draft.Image,
		Date:     date,
	}, nil
}

func (s *ArticleService) publish(kind, id string, a *model.Article) {
	if s.events == nil {
		return
	}
	s.events.Publish(model.Event{Type: kind, ArticleID: id, Payload: a})
}
