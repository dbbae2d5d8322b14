package model

import "time"

// Rating is a single user's score for an article, in [0,5].
type Rating struct {
	ArticleID string    `json:"article"`
	RatedBy   int64     `json:"rated_by"`
	Value     int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Highlight is a character range of an article body with a comment attached.
// Start and End are rune offsets into the body at creation time.
type Highlight struct {
	ID            string    `json:"id"`
	ArticleID     string    `json:"article"`
	HighlighterID int64     `json:"highlighter"`
	Start         int       `json:"highlight_start"`
	End           int       `json:"highlight_end"`
	Text          string    `json:"highlight_text"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Bookmark struct {
	ArticleID string    `json:"article"`
	UserID    int64     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID          string    `json:"id"`
	ArticleID   string    `json:"article"`
	CommenterID int64     `json:"commenter"`
	Text        string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is an account known to the service. Credentials live with the
// authentication provider.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
