package entity

import "time"

// SearchHistoryItem records one executed lead search.
type SearchHistoryItem struct {
	Id          string    `json:"id"`
	Query       string    `json:"query"`
	SearchType  string    `json:"search_type"` // "people" | "companies"
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}

// PrependHistory inserts item at the front and truncates to max entries.
func PrependHistory(items []SearchHistoryItem, item SearchHistoryItem, max int) []SearchHistoryItem {
	out := append([]SearchHistoryItem{item}, items...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}
