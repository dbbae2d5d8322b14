package model

import "time"

// Article data model. FavouritedBy and UnfavouritedBy are the engagement
// sets; a user id never appears in both.
type Article struct {
	ID          string    `json:"id"`
	AuthorID    int64     `json:"author_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	Slug        string    `json:"slug"`
	ReadingTime int       `json:"reading_time"`
	Tags        []Tag     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FavouritedBy   UserSet `json:"-"`
	UnfavouritedBy UserSet `json:"-"`

	// Version guards read-modify-write updates of the engagement and tag sets.
	Version int64 `json:"-"`
}

// TagNames returns the names of the article's tags in stored order.
func (a *Article) TagNames() []string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}

	return names
}

type Tag struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Author string // username, case-insensitive substring
	Tag    string // tag name, case-insensitive substring
	Title  string // case-insensitive exact match
	Limit  uint64
	Offset uint64
}

// ArticleStats is the reading statistics view of an article.
type ArticleStats struct {
	Slug             string  `json:"slug"`
	Title            string  `json:"title"`
	CommentCount     int     `json:"comment_count"`
	BookmarkCount    int     `json:"bookmark_count"`
	FavouriteCount   int     `json:"favourite_count"`
	UnfavouriteCount int     `json:"unfavourite_count"`
	AverageRating    float64 `json:"average_rating"`
}
