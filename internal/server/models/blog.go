package models

import "time"

// Blog carries only the columns notification entity resolution and the
// comment producer need. Content storage lives elsewhere.
type Blog struct {
	ID        string
	AuthorID  string
	Title     string
	Slug      string
	CreatedAt time.Time
}

type Comment struct {
	ID        string
	BlogID    string
	UserID    string
	Content   string
	CreatedAt time.Time
}
