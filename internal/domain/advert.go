package domain

import "time"

// Advert is authored by a user. It is persisted alongside users but has
// no HTTP surface of its own yet.
type Advert struct {
	ID          int64
	Topic       string
	Description string
	CreateDate  time.Time
	UserID      int64
}
