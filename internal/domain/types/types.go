// Package types contains read shapes shared by the adapters.
package types

// Entry is one leaderboard row.
type Entry struct {
	Rank         int     `json:"rank"`
	Contestant   string  `json:"contestant"`
	Rating       float64 `json:"rating"`
	Competitions int     `json:"competitions"`
}

// Stats summarises the state served by the read API.
type Stats struct {
	RunID        string `json:"run_id,omitempty"`
	Contests     int    `json:"contests"`
	Contestants  int    `json:"contestants"`
	Models       int    `json:"models"`
	Fitted       int    `json:"fitted"`
	Rejections   int    `json:"rejections"`
	LastRunUnix  int64  `json:"last_run_unix,omitempty"`
	LastDuration string `json:"last_duration,omitempty"`
}
