package domain

import "time"

// Keyword is a search term in the discovery frontier. Unique on text,
// case-insensitively.
type Keyword struct {
	Keyword   string
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
