package model

import "time"

// Showcase is a user-submitted project entry in the public gallery.
type Showcase struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	AuthorName  string     `json:"author_name,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	RepoURL     string     `json:"repo_url,omitempty"`
	ImageKey    string     `json:"-"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	IsDeleted   bool       `json:"-"`
	VoteCount   int        `json:"vote_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OwnedBy reports whether userID created the entry.
func (s *Showcase) OwnedBy(userID string) bool {
	return userID != "" && s.UserID == userID
}
