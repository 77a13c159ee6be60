package entities

import "time"

// WatchEntry is a persisted user intent to be notified about one bookable
// slot. The absolute booking URL is the slot's identity: price and
// availability may change between polls, the URL does not.
type WatchEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	URL       string    `json:"url" db:"url"`
	TeeTime   time.Time `json:"tee_time" db:"tee_time"`
	Notified  bool      `json:"notified" db:"notified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
