package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"newsdesk/internal/article/model"
)

// AllCategories is the pseudo-category that disables category filtering.
const AllCategories = "All"

// ArticleLister fetches the published articles; client.Client satisfies it.
type ArticleLister interface {
	ListArticles(ctx context.Context, category string) ([]model.Article, error)
}

// Criteria is the reader's current filter selection. Zero values match everything.
// Only the calendar date of Date is used; it is read as UTC midnight, the same
// way the server stores a date-only article.
type Criteria struct {
	Search   string
	Category string
	Date     time.Time
}

type Option func(*Feed)

// WithDelay holds Load back before fetching so the loading state is observable.
func WithDelay(d time.Duration) Option {
	return func(f *Feed) { f.delay = d }
}

// WithLocation compares calendar days in loc instead of each article's own offset.
func WithLocation(loc *time.Location) Option {
	return func(f *Feed) { f.loc = loc }
}

// Feed is the public reader's view: fetched once, then filtered locally.
type Feed struct {
	mu       sync.RWMutex
	source   ArticleLister
	delay    time.Duration
	loc      *time.Location
	articles []model.Article
	loaded   bool
}

func NewFeed(source ArticleLister, opts ...Option) *Feed {
	f := &Feed{source: source}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load fetches the full article list. On failure the previous state is kept.
func (f *Feed) Load(ctx context.Context) error {
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	articles, err := f.source.ListArticles(ctx, "")
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}

	f.mu.Lock()
	f.articles = articles
	f.loaded = true
	f.mu.Unlock()
	return nil
}

func (f *Feed) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.loaded
}

func (f *Feed) Articles() []model.Article {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]model.Article(nil), f.articles...)
}

// Categories lists "All" followed by each distinct category, compared
// case-insensitively, in first-seen order.
func (f *Feed) Categories() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []string{AllCategories}
	seen := make(map[string]bool)
	for _, a := range f.articles {
		key := strings.ToLower(a.Category)
		if key == "" || key == strings.ToLower(AllCategories) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, DisplayCategory(key))
	}
	return out
}

// DisplayCategory uppercases the first letter of a lowercased category.
func DisplayCategory(category string) string {
	category = strings.ToLower(category)
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + category[size:]
}

// Visible returns the loaded articles matching c, in fetched order. Nothing is
// visible while the feed is loading.
func (f *Feed) Visible(c Criteria) []model.Article {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.loaded {
		return nil
	}
	out := []model.Article{}
	for _, a := range f.articles {
		if f.matches(a, c) {
			out = append(out, a)
		}
	}
	return out
}

func (f *Feed) matches(a model.Article, c Criteria) bool {
	if q := strings.ToLower(c.Search); q != "" {
		if !strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.Summary), q) &&
			!strings.Contains(strings.ToLower(a.Category), q) {
			return false
		}
	}
	if c.Category != "" && c.Category != AllCategories && !strings.EqualFold(a.Category, c.Category) {
		return false
	}
	if !c.Date.IsZero() && !f.sameDay(a.Date, c.Date) {
		return false
	}
	return true
}

func (f *Feed) sameDay(a, selected time.Time) bool {
	y, m, d := selected.Date()
	b := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if f.loc != nil {
		a = a.In(f.loc)
		b = b.In(f.loc)
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Apply folds a live article event into the loaded list, keeping date order.
// Events arriving before the first Load are ignored.
func (f *Feed) Apply(evt model.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		return
	}
	idx := -1
	for i, a := range f.articles {
		if a.ID == evt.ArticleID {
			idx = i
			break
		}
	}

	switch evt.Type {
	case model.ArticleDeleted:
		if idx >= 0 {
			f.articles = append(f.articles[:idx], f.articles[idx+1:]...)
		}
	case model.ArticleCreated, model.ArticleUpdated:
		if evt.Payload == nil {
			return
		}
		if idx >= 0 {
			f.articles = append(f.articles[:idx], f.articles[idx+1:]...)
		}
		f.insert(*evt.Payload)
	}
}

// insert places a before the first article that is strictly older, so a newer
// insertion wins ties like the store's ordering.
func (f *Feed) insert(a model.Article) {
	pos := sort.Search(len(f.articles), func(i int) bool {
		return !f.articles[i].Date.After(a.Date)
	})
	f.articles = append(f.articles, model.Article{})
	copy(f.articles[pos+1:], f.articles[pos:])
	f.articles[pos] = a
}
