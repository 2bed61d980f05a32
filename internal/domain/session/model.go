package session

import "time"

// Session records activity of one MCP client connection. Rows are pruned
// once they have been idle longer than the configured age.
type Session struct {
	ID           string         `json:"id"`
	Data         map[string]any `json:"session_data"`
	CreatedAt    time.Time      `json:"created_at"`
	LastAccessed time.Time      `json:"last_accessed"`
}
