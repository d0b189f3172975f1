package workspace

import "time"

// Note holds metadata and cached content for a business context file:
// a strategy memo, meeting notes, anything that should ground the
// model's read of the numbers.
type Note struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Tokens      int       `json:"tokens"`
	AddedAt     time.Time `json:"added_at"`
}
