package workspace

import "time"

// Dataset holds metadata and the cached analysis summary for one data file.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Summary     string    `json:"summary"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	Tokens      int       `json:"tokens"`
	AddedAt     time.Time `json:"added_at"`
}
