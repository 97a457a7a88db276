package domain

import "time"

const (
	MaxPostLen     = 140 // runes
	MaxLanguageLen = 5
)

// Post is immutable once stored. Author is filled in by read queries for
// display and ignored on insert.
type Post struct {
	ID        int64
	Body      string
	Timestamp time.Time
	UserID    int64
	Language  string
	Author    string
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts   []Post
	Page    int
	HasNext bool
	HasPrev bool
}
