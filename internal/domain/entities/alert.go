package entities

import "time"

// AlertRule is a stored notification preference: a set of courses, a date
// and a time window the user wants tee times for. Rules are not reconciled
// against live search results by the API server; the watcher worker picks
// up active rules on its own schedule.
type AlertRule struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CourseIDs []int64   `json:"course_ids" db:"course_ids"`
	AlertDate time.Time `json:"alert_date" db:"alert_date"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	Players   int       `json:"players" db:"players"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
