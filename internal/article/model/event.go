package model

const (
	ArticleCreated = "ARTICLE_CREATED"
	ArticleUpdated = "ARTICLE_UPDATED"
	ArticleDeleted = "ARTICLE_DELETED"
)

// Event describes a committed article mutation pushed to live subscribers.
// Payload is nil for deletions.
type Event struct {
	Type      string   `json:"type"`
	ArticleID string   `json:"article_id"`
	Payload   *Article `json:"payload,omitempty"`
}
