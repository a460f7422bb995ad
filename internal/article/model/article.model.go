package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the calendar-day format produced by date inputs.
const DateLayout = "2006-01-02"

var ErrNotFound = errors.New("article not found")

// ValidationError reports the first draft field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Image     string    `json:"image,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// Draft is the caller-supplied field set for create and update.
type Draft struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image,omitempty"`
	Date     string `json:"date,omitempty"`
}

// Filter narrows List. An empty Category matches every article.
type Filter struct {
	Category string
}

type DeleteResponse struct {
	Message string `json:"message"`
}

// Validate checks the required text fields, the image encoding and the date format.
func (d Draft) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"title", d.Title},
		{"summary", d.Summary},
		{"content", d.Content},
		{"category", d.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.field + " is required"}
		}
	}
	if d.Image != "" && !strings.HasPrefix(d.Image, "data:") {
		return &ValidationError{Field: "image", Message: "image must be a data URI"}
	}
	if _, _, err := d.ParseDate(); err != nil {
		return &ValidationError{Field: "date", Message: err.Error()}
	}
	return nil
}

// ParseDate returns the supplied date and whether one was supplied.
// Accepts YYYY-MM-DD (interpreted as UTC midnight) or RFC 3339.
func (d Draft) ParseDate() (time.Time, bool, error) {
	raw := strings.TrimSpace(d.Date)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", raw)
}

// CanonicalCategory title-cases category text: words are split on whitespace,
// lowercased, their first letter uppercased, and rejoined with single spaces.
func CanonicalCategory(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		w = strings.ToLower(w)
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
